package summarizer

import (
	"fmt"
	"strings"

	"docsum/internal/domain"
	"docsum/internal/prompt"
)

// Kind selects a summarization strategy.
type Kind int

const (
	KindZeroShot Kind = iota
	KindRAG
	KindMapReduce
	kindCount
)

// Info describes a strategy for listings.
type Info struct {
	Kind           Kind
	Name           string
	Description    string
	RecommendedFor string
}

var infos = [kindCount]Info{
	KindZeroShot: {
		Kind:           KindZeroShot,
		Name:           "zero_shot",
		Description:    "Quick and efficient summarization",
		RecommendedFor: "short and medium documents that fit in one prompt",
	},
	KindRAG: {
		Kind:           KindRAG,
		Name:           "rag",
		Description:    "Retrieval-augmented generation for enhanced context",
		RecommendedFor: "documents where a few passages carry the message",
	},
	KindMapReduce: {
		Kind:           KindMapReduce,
		Name:           "map_reduce",
		Description:    "Hierarchical summarization for long documents",
		RecommendedFor: "long documents that exceed the model context",
	},
}

var aliases = map[string]Kind{
	"zero_shot":  KindZeroShot,
	"zeroshot":   KindZeroShot,
	"default":    KindZeroShot,
	"rag":        KindRAG,
	"map_reduce": KindMapReduce,
	"mapreduce":  KindMapReduce,
	"map-reduce": KindMapReduce,
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return infos[k].Name
}

// ParseKind resolves a strategy name case-insensitively. The empty name is the default.
func ParseKind(s string) (Kind, error) {
	if strings.TrimSpace(s) == "" {
		return KindZeroShot, nil
	}
	if k, ok := aliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("%w: %q", domain.ErrUnknownStrategy, s)
}

// Kinds lists every strategy in declaration order.
func Kinds() []Info {
	return append([]Info(nil), infos[:]...)
}

// Deps are the collaborators shared by all strategies.
type Deps struct {
	Completer domain.Completer
	Prompts   prompt.Resolver
	// Embedder is required by KindRAG only.
	Embedder  domain.Embedder
	RAG       []RAGOption
	MapReduce []MapReduceOption
}

var factories = [kindCount]func(Deps) (domain.Summarizer, error){
	KindZeroShot: func(d Deps) (domain.Summarizer, error) {
		s, err := NewZeroShot(d.Completer, d.Prompts)
		if err != nil {
			return nil, err
		}
		return s, nil
	},
	KindRAG: func(d Deps) (domain.Summarizer, error) {
		s, err := NewRAG(d.Completer, d.Prompts, d.Embedder, d.RAG...)
		if err != nil {
			return nil, err
		}
		return s, nil
	},
	KindMapReduce: func(d Deps) (domain.Summarizer, error) {
		s, err := NewMapReduce(d.Completer, d.Prompts, d.MapReduce...)
		if err != nil {
			return nil, err
		}
		return s, nil
	},
}

// New constructs the strategy for kind.
func New(kind Kind, deps Deps) (domain.Summarizer, error) {
	if kind < 0 || kind >= kindCount {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownStrategy, kind)
	}
	if deps.Completer == nil || deps.Prompts == nil {
		return nil, fmt.Errorf("%s: completer and prompts are required", kind)
	}
	return factories[kind](deps)
}

package embedding

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"

	"foodrec/internal/domain"
)

// ONNXOptions locates a sentence-transformer exported to ONNX together with
// its HuggingFace tokenizer.json.
type ONNXOptions struct {
	LibraryPath   string
	ModelPath     string
	TokenizerPath string
	Dimension     int
	MaxSeqLen     int
}

// ONNXEmbedder runs a local transformer through onnxruntime and mean-pools
// the last hidden state into one unit vector per text.
type ONNXEmbedder struct {
	mu        sync.Mutex
	tk        *tokenizer.Tokenizer
	session   *ort.DynamicAdvancedSession
	model     string
	dimension int
	maxSeqLen int
}

var (
	ortOnce sync.Once
	ortErr  error
)

// initRuntime loads the shared library once per process; onnxruntime keeps a
// single global environment.
func initRuntime(libPath string) error {
	ortOnce.Do(func() {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		ortErr = ort.InitializeEnvironment()
	})
	return ortErr
}

func NewONNXEmbedder(opts ONNXOptions) (*ONNXEmbedder, error) {
	if opts.ModelPath == "" || opts.TokenizerPath == "" {
		return nil, fmt.Errorf("%w: onnx.model_path and onnx.tokenizer_path are required", domain.ErrModelUnavailable)
	}
	if opts.Dimension <= 0 {
		return nil, fmt.Errorf("%w: embedding dimension must be positive", domain.ErrModelUnavailable)
	}
	if opts.MaxSeqLen <= 0 {
		opts.MaxSeqLen = 128
	}

	if err := initRuntime(opts.LibraryPath); err != nil {
		return nil, fmt.Errorf("%w: init onnxruntime: %v", domain.ErrModelUnavailable, err)
	}

	tk, err := pretrained.FromFile(opts.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("%w: load tokenizer %s: %v", domain.ErrModelUnavailable, opts.TokenizerPath, err)
	}

	session, err := ort.NewDynamicAdvancedSession(
		opts.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: open model %s: %v", domain.ErrModelUnavailable, opts.ModelPath, err)
	}

	return &ONNXEmbedder{
		tk:        tk,
		session:   session,
		model:     filepath.Base(filepath.Dir(opts.ModelPath)) + "/" + filepath.Base(opts.ModelPath),
		dimension: opts.Dimension,
		maxSeqLen: opts.MaxSeqLen,
	}, nil
}

func (e *ONNXEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return nil, fmt.Errorf("%w: onnx session closed", domain.ErrModelUnavailable)
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := e.embedOne(text)
		if err != nil {
			return nil, fmt.Errorf("%w: encode %q: %v", domain.ErrModelUnavailable, text, err)
		}
		out[i] = vec
	}
	return out, nil
}

func (e *ONNXEmbedder) embedOne(text string) ([]float32, error) {
	enc, err := e.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, err
	}

	ids := enc.GetIds()
	n := len(ids)
	if n > e.maxSeqLen {
		n = e.maxSeqLen
	}
	if n == 0 {
		return make([]float32, e.dimension), nil
	}

	inputIDs := toInt64(ids, n)
	mask := toInt64(enc.GetAttentionMask(), n)
	if len(enc.GetAttentionMask()) == 0 {
		for i := range mask {
			mask[i] = 1
		}
	}
	typeIDs := toInt64(enc.GetTypeIds(), n)

	shape := ort.NewShape(1, int64(n))
	idsT, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, err
	}
	defer idsT.Destroy()
	maskT, err := ort.NewTensor(shape, mask)
	if err != nil {
		return nil, err
	}
	defer maskT.Destroy()
	typeT, err := ort.NewTensor(shape, typeIDs)
	if err != nil {
		return nil, err
	}
	defer typeT.Destroy()

	hidden, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(n), int64(e.dimension)))
	if err != nil {
		return nil, err
	}
	defer hidden.Destroy()

	if err := e.session.Run([]ort.Value{idsT, maskT, typeT}, []ort.Value{hidden}); err != nil {
		return nil, err
	}

	return Normalize(MeanPool(hidden.GetData(), mask, n, e.dimension)), nil
}

// toInt64 copies the first n values, padding with zeros when src is short.
func toInt64(src []int, n int) []int64 {
	out := make([]int64, n)
	for i := 0; i < n && i < len(src); i++ {
		out[i] = int64(src[i])
	}
	return out
}

func (e *ONNXEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil
	}
	err := e.session.Destroy()
	e.session = nil
	return err
}

func (e *ONNXEmbedder) Dimension() int {
	return e.dimension
}

func (e *ONNXEmbedder) ModelName() string {
	return e.model
}

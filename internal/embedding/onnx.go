package embedding

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Model directory layout for the local BERT provider. The directory holds
// the exported model, its WordPiece vocabulary, and the ONNX Runtime
// shared library.
const (
	onnxModelFile = "model.onnx"
	onnxVocabFile = "vocab.txt"
	onnxLibFile   = "libonnxruntime.so"
)

// ortEnv manages global ONNX Runtime initialization (process-wide singleton).
var ortEnv struct {
	once sync.Once
	err  error
}

// initORT initializes the ONNX Runtime environment. Safe to call multiple
// times; only the first call has any effect.
func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// ONNXProvider runs a local BERT-for-Patents model through ONNX Runtime.
// The embedding pipeline mirrors the reference model card: WordPiece
// tokenize, run the encoder, mean-pool the last hidden state over the
// attention mask, then L2-normalize.
type ONNXProvider struct {
	session    *ort.DynamicAdvancedSession
	tok        *tokenizer
	modelName  string
	inputNames []string
	embedDim   int64

	mu sync.Mutex // ONNX sessions are not safe for concurrent Run calls
}

// NewONNXProvider loads a BERT-style ONNX model from modelDir. modelName
// is recorded in label indexes for staleness detection.
func NewONNXProvider(modelDir, modelName string) (*ONNXProvider, error) {
	modelPath := filepath.Join(modelDir, onnxModelFile)
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	if err := initORT(filepath.Join(modelDir, onnxLibFile)); err != nil {
		return nil, fmt.Errorf("%w: initializing onnx runtime: %v", ErrProviderUnavailable, err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("reading model info: %w", err)
	}

	inputNames, err := validateBERTInputs(inputs)
	if err != nil {
		return nil, err
	}

	if len(outputs) == 0 {
		return nil, fmt.Errorf("model has no outputs")
	}
	outDims := outputs[0].Dimensions
	if len(outDims) != 3 {
		return nil, fmt.Errorf("expected 3D output tensor [batch, seq, dim], got %v", outDims)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("creating session options: %w", err)
	}
	defer opts.Destroy()
	opts.SetIntraOpNumThreads(4)
	opts.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSession(modelPath, inputNames, []string{outputs[0].Name}, opts)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	tok, err := newTokenizer(filepath.Join(modelDir, onnxVocabFile))
	if err != nil {
		session.Destroy()
		return nil, err
	}

	return &ONNXProvider{
		session:    session,
		tok:        tok,
		modelName:  modelName,
		inputNames: inputNames,
		embedDim:   outDims[2],
	}, nil
}

// validateBERTInputs checks that the model has the expected BERT-style
// inputs and returns them in the order the session expects.
func validateBERTInputs(inputs []ort.InputOutputInfo) ([]string, error) {
	nameSet := make(map[string]bool, len(inputs))
	for _, inp := range inputs {
		nameSet[inp.Name] = true
	}
	required := []string{"input_ids", "attention_mask", "token_type_ids"}
	for _, name := range required {
		if !nameSet[name] {
			return nil, fmt.Errorf("model missing required input %q", name)
		}
	}
	return required, nil
}

// Embed generates an embedding for the given text.
func (p *ONNXProvider) Embed(ctx context.Context, text string) (Embedding, error) {
	if err := ctx.Err(); err != nil {
		return Embedding{}, err
	}

	ids, mask, typeIDs, seqLen := p.tok.tokenize(text)

	hidden, err := p.infer(ids, mask, typeIDs, seqLen)
	if err != nil {
		return Embedding{}, err
	}

	pooled := meanPool(hidden, mask, seqLen, p.embedDim)
	return Embedding{Vector: pooled}.Normalize(), nil
}

// infer runs one inference call for a single sequence of length seqLen.
// Returns the last hidden state as a flat [seqLen * embedDim] slice.
func (p *ONNXProvider) infer(inputIDs, attentionMask, tokenTypeIDs []int64, seqLen int64) ([]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	shape := ort.NewShape(1, seqLen)

	tIDs, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("creating input_ids tensor: %w", err)
	}
	defer tIDs.Destroy()

	tMask, err := ort.NewTensor(shape, attentionMask)
	if err != nil {
		return nil, fmt.Errorf("creating attention_mask tensor: %w", err)
	}
	defer tMask.Destroy()

	tTypes, err := ort.NewTensor(shape, tokenTypeIDs)
	if err != nil {
		return nil, fmt.Errorf("creating token_type_ids tensor: %w", err)
	}
	defer tTypes.Destroy()

	outShape := ort.NewShape(1, seqLen, p.embedDim)
	tOut, err := ort.NewEmptyTensor[float32](outShape)
	if err != nil {
		return nil, fmt.Errorf("creating output tensor: %w", err)
	}
	defer tOut.Destroy()

	err = p.session.Run([]ort.Value{tIDs, tMask, tTypes}, []ort.Value{tOut})
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	src := tOut.GetData()
	result := make([]float32, len(src))
	copy(result, src)
	return result, nil
}

// meanPool averages token vectors over the attention mask, skipping
// padding positions.
func meanPool(hidden []float32, mask []int64, seqLen, dim int64) []float32 {
	pooled := make([]float32, dim)
	var count float32
	for t := int64(0); t < seqLen; t++ {
		if mask[t] == 0 {
			continue
		}
		count++
		offset := t * dim
		for d := int64(0); d < dim; d++ {
			pooled[d] += hidden[offset+d]
		}
	}
	if count == 0 {
		return pooled
	}
	for d := range pooled {
		pooled[d] /= count
	}
	return pooled
}

// ModelName returns the recorded model name.
func (p *ONNXProvider) ModelName() string {
	return p.modelName
}

// Dimensions returns the output vector dimensions.
func (p *ONNXProvider) Dimensions() int {
	return int(p.embedDim)
}

// Close releases ONNX Runtime resources.
func (p *ONNXProvider) Close() error {
	if p.session != nil {
		return p.session.Destroy()
	}
	return nil
}

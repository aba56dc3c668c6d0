//go:build cgo
// +build cgo

package rerank

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	ortOnce sync.Once
	ortErr  error
)

// CrossEncoder scores pairs with an ONNX sequence-classification model (e.g. ms-marco MiniLM).
// It requires CGO and the onnxruntime shared library.
type CrossEncoder struct {
	session   *ort.AdvancedSession
	maxTokens int
	tokenizer Tokenizer
	// Pre-allocated tensors for Run(); we update input data and read output.
	inputIDsTensor      *ort.Tensor[int64]
	attentionMaskTensor *ort.Tensor[int64]
	tokenTypeIDsTensor  *ort.Tensor[int64]
	outputTensor        *ort.Tensor[float32]
	mu                  sync.Mutex
}

// NewCrossEncoder loads the model at modelPath with a single-pair input of maxTokens.
func NewCrossEncoder(modelPath string, maxTokens int, tokenizer Tokenizer) (*CrossEncoder, error) {
	ortOnce.Do(func() { ortErr = ort.InitializeEnvironment() })
	if ortErr != nil {
		return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", ortErr)
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	inputIDs, attentionMask, tokenTypeIDs := tokenizer.TokenizePair("", "", maxTokens)
	shape := ort.NewShape(1, int64(maxTokens))

	inputIDsTensor, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to create input_ids tensor: %w", err)
	}
	attentionMaskTensor, err := ort.NewTensor(shape, attentionMask)
	if err != nil {
		inputIDsTensor.Destroy()
		return nil, fmt.Errorf("failed to create attention_mask tensor: %w", err)
	}
	tokenTypeIDsTensor, err := ort.NewTensor(shape, tokenTypeIDs)
	if err != nil {
		inputIDsTensor.Destroy()
		attentionMaskTensor.Destroy()
		return nil, fmt.Errorf("failed to create token_type_ids tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		inputIDsTensor.Destroy()
		attentionMaskTensor.Destroy()
		tokenTypeIDsTensor.Destroy()
		return nil, fmt.Errorf("failed to create logits tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"logits"},
		[]ort.ArbitraryTensor{inputIDsTensor, attentionMaskTensor, tokenTypeIDsTensor},
		[]ort.ArbitraryTensor{outputTensor},
		nil,
	)
	if err != nil {
		inputIDsTensor.Destroy()
		attentionMaskTensor.Destroy()
		tokenTypeIDsTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &CrossEncoder{
		session:             session,
		maxTokens:           maxTokens,
		tokenizer:           tokenizer,
		inputIDsTensor:      inputIDsTensor,
		attentionMaskTensor: attentionMaskTensor,
		tokenTypeIDsTensor:  tokenTypeIDsTensor,
		outputTensor:        outputTensor,
	}, nil
}

// Name returns the reranker type.
func (c *CrossEncoder) Name() string { return TypeCrossEncoder }

// Score runs one inference per passage and returns the raw relevance logits.
func (c *CrossEncoder) Score(ctx context.Context, query string, passages []string) ([]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	scores := make([]float64, len(passages))
	for i, p := range passages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		inputIDs, attentionMask, tokenTypeIDs := c.tokenizer.TokenizePair(query, p, c.maxTokens)
		copy(c.inputIDsTensor.GetData(), inputIDs)
		copy(c.attentionMaskTensor.GetData(), attentionMask)
		copy(c.tokenTypeIDsTensor.GetData(), tokenTypeIDs)

		if err := c.session.Run(); err != nil {
			return nil, fmt.Errorf("inference failed: %w", err)
		}
		scores[i] = float64(c.outputTensor.GetData()[0])
	}
	return scores, nil
}

// Close destroys the session and tensors.
func (c *CrossEncoder) Close() error {
	var err error
	if c.session != nil {
		err = c.session.Destroy()
		c.session = nil
	}
	for _, t := range []*ort.Tensor[int64]{c.inputIDsTensor, c.attentionMaskTensor, c.tokenTypeIDsTensor} {
		if t != nil {
			_ = t.Destroy()
		}
	}
	c.inputIDsTensor, c.attentionMaskTensor, c.tokenTypeIDsTensor = nil, nil, nil
	if c.outputTensor != nil {
		_ = c.outputTensor.Destroy()
		c.outputTensor = nil
	}
	return err
}

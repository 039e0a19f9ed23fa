//go:build onnx

// Package onnx provides a local embedder backed by ONNX Runtime, for
// deployments that cannot ship queries to a hosted embedding API. It runs
// sentence-transformer style models (all-MiniLM-L6-v2 by default) with a
// WordPiece tokenizer loaded from the model's tokenizer.json.
package onnx

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	ort "github.com/yalue/onnxruntime_go"
)

const maxSeqLen = 128

// Config configures the ONNX embedder.
type Config struct {
	// ModelPath is the path to the ONNX model file.
	ModelPath string

	// TokenizerPath is the path to the tokenizer.json file.
	TokenizerPath string

	// LibraryPath locates libonnxruntime.so. Falls back to the
	// ONNXRUNTIME_LIB environment variable.
	LibraryPath string

	// Dimensions is the embedding vector size (default 384).
	Dimensions int

	Logger *log.Logger
}

// Embedder generates embeddings with a local ONNX session.
type Embedder struct {
	session    *ort.DynamicAdvancedSession
	tokenizer  *wordPieceTokenizer
	dimensions int
	logger     *log.Logger
}

// New creates an embedder. The caller owns the returned session and must
// Close it.
func New(cfg Config) (*Embedder, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("onnx: ModelPath is required")
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = 384
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default().With("component", "embedder.onnx")
	}

	libPath := cfg.LibraryPath
	if libPath == "" {
		libPath = os.Getenv("ONNXRUNTIME_LIB")
	}
	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("onnx: initialize runtime: %w", err)
	}

	tokenizer, err := loadTokenizer(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: load tokenizer: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("onnx: create session: %w", err)
	}

	return &Embedder{
		session:    session,
		tokenizer:  tokenizer,
		dimensions: cfg.Dimensions,
		logger:     cfg.Logger,
	}, nil
}

// Embed returns one embedding per input text. Inference runs sequentially;
// the session is not safe for concurrent Run calls.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := e.embedOne(text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// Close releases the ONNX session.
func (e *Embedder) Close() error {
	if e.session != nil {
		return e.session.Destroy()
	}
	return nil
}

func (e *Embedder) embedOne(text string) ([]float32, error) {
	tokens := e.tokenizer.tokenize(text)

	inputIDs := make([]int64, maxSeqLen)
	attentionMask := make([]int64, maxSeqLen)
	tokenTypeIDs := make([]int64, maxSeqLen)

	inputIDs[0] = int64(e.tokenizer.clsToken)
	attentionMask[0] = 1

	tokenLen := len(tokens)
	if tokenLen > maxSeqLen-2 {
		tokenLen = maxSeqLen - 2
	}
	for i := 0; i < tokenLen; i++ {
		inputIDs[i+1] = tokens[i]
		attentionMask[i+1] = 1
	}
	inputIDs[tokenLen+1] = int64(e.tokenizer.sepToken)
	attentionMask[tokenLen+1] = 1

	shape := ort.NewShape(1, int64(maxSeqLen))
	inputIDsTensor, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("onnx: input_ids tensor: %w", err)
	}
	defer inputIDsTensor.Destroy()

	attentionMaskTensor, err := ort.NewTensor(shape, attentionMask)
	if err != nil {
		return nil, fmt.Errorf("onnx: attention_mask tensor: %w", err)
	}
	defer attentionMaskTensor.Destroy()

	tokenTypeIDsTensor, err := ort.NewTensor(shape, tokenTypeIDs)
	if err != nil {
		return nil, fmt.Errorf("onnx: token_type_ids tensor: %w", err)
	}
	defer tokenTypeIDsTensor.Destroy()

	inputs := []ort.Value{inputIDsTensor, attentionMaskTensor, tokenTypeIDsTensor}
	outputs := []ort.Value{nil}
	if err := e.session.Run(inputs, outputs); err != nil {
		return nil, fmt.Errorf("onnx: inference: %w", err)
	}
	defer func() {
		for _, o := range outputs {
			if o != nil {
				o.Destroy()
			}
		}
	}()

	if len(outputs) == 0 || outputs[0] == nil {
		return nil, fmt.Errorf("onnx: no output tensors returned")
	}
	outputTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("onnx: unexpected output tensor type")
	}

	embedding, err := e.pool(outputTensor, attentionMask)
	if err != nil {
		return nil, err
	}
	return normalize(embedding), nil
}

// pool reduces the model output to a single vector. A 2-D output is already
// pooled; a 3-D output gets attention-masked mean pooling.
func (e *Embedder) pool(t *ort.Tensor[float32], attentionMask []int64) ([]float32, error) {
	data := t.GetData()
	shape := t.GetShape()

	switch len(shape) {
	case 2:
		if len(data) < e.dimensions {
			return nil, fmt.Errorf("onnx: output dimension mismatch: got %d, expected %d", len(data), e.dimensions)
		}
		embedding := make([]float32, e.dimensions)
		copy(embedding, data[:e.dimensions])
		return embedding, nil

	case 3:
		seqLen, hiddenSize := shape[1], shape[2]
		if shape[0] != 1 {
			return nil, fmt.Errorf("onnx: expected batch size 1, got %d", shape[0])
		}
		if hiddenSize != int64(e.dimensions) {
			return nil, fmt.Errorf("onnx: hidden size mismatch: got %d, expected %d", hiddenSize, e.dimensions)
		}

		embedding := make([]float32, e.dimensions)
		var attended float32
		for i := 0; i < int(seqLen); i++ {
			if attentionMask[i] == 0 {
				continue
			}
			attended++
			offset := i * int(hiddenSize)
			for j := 0; j < int(hiddenSize); j++ {
				embedding[j] += data[offset+j]
			}
		}
		if attended == 0 {
			return embedding, nil
		}
		for j := range embedding {
			embedding[j] /= attended
		}
		return embedding, nil

	default:
		return nil, fmt.Errorf("onnx: unexpected output shape: %v", shape)
	}
}

func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = float32(math.Sqrt(float64(norm)))
	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = v / norm
	}
	return normalized
}

type wordPieceTokenizer struct {
	vocab    map[string]int
	clsToken int
	sepToken int
	unkToken int
}

func loadTokenizer(path string) (*wordPieceTokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tokenizerData struct {
		Model struct {
			Vocab map[string]int `json:"vocab"`
		} `json:"model"`
	}
	if err := json.Unmarshal(data, &tokenizerData); err != nil {
		return nil, err
	}

	return &wordPieceTokenizer{
		vocab:    tokenizerData.Model.Vocab,
		clsToken: 101, // [CLS]
		sepToken: 102, // [SEP]
		unkToken: 100, // [UNK]
	}, nil
}

func (t *wordPieceTokenizer) tokenize(text string) []int64 {
	var tokens []int64
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'")
		if id, ok := t.vocab[word]; ok {
			tokens = append(tokens, int64(id))
			continue
		}
		for _, sub := range t.split(word) {
			if id, ok := t.vocab[sub]; ok {
				tokens = append(tokens, int64(id))
			} else {
				tokens = append(tokens, int64(t.unkToken))
			}
		}
	}
	return tokens
}

// split performs greedy longest-prefix WordPiece splitting.
func (t *wordPieceTokenizer) split(word string) []string {
	var subwords []string
	start := 0
	for start < len(word) {
		end := len(word)
		found := false
		for end > start {
			sub := word[start:end]
			if start > 0 {
				sub = "##" + sub
			}
			if _, ok := t.vocab[sub]; ok {
				subwords = append(subwords, sub)
				start = end
				found = true
				break
			}
			end--
		}
		if !found {
			subwords = append(subwords, "[UNK]")
			start++
		}
	}
	return subwords
}

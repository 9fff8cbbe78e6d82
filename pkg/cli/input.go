package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/dermarisk/pkg/domain/model"
	"github.com/secmon-lab/dermarisk/pkg/utils/safe"
)

const stdinPath = "-"

// parseProbabilityList parses a comma separated list such as "0.1,0.2,0.7"
func parseProbabilityList(s string) (model.ProbabilityVector, error) {
	fields := strings.Split(s, ",")
	probs := make(model.ProbabilityVector, 0, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, goerr.Wrap(model.ErrInvalidInput, "probability is not a number",
				goerr.V(model.IndexKey, i), goerr.V(model.ValueKey, f))
		}
		probs = append(probs, v)
	}
	return probs, nil
}

// parseProbabilityJSON accepts either a bare array or {"probabilities": [...]}
func parseProbabilityJSON(data []byte) (model.ProbabilityVector, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, goerr.Wrap(model.ErrInvalidInput, "input is empty")
	}

	if data[0] == '[' {
		var probs []float64
		if err := json.Unmarshal(data, &probs); err != nil {
			return nil, goerr.Wrap(model.ErrInvalidInput, "malformed probability array",
				goerr.V("cause", err.Error()))
		}
		return probs, nil
	}

	var obj struct {
		Probabilities []float64 `json:"probabilities"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, goerr.Wrap(model.ErrInvalidInput, "malformed probability object",
			goerr.V("cause", err.Error()))
	}
	return obj.Probabilities, nil
}

// openInput opens path for reading, or stdin when path is "-"
func openInput(path string) (io.ReadCloser, error) {
	if path == stdinPath {
		return io.NopCloser(os.Stdin), nil
	}

	// #nosec G304 - path is provided by CLI argument
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open input", goerr.V("path", path))
	}
	return f, nil
}

func readInput(ctx context.Context, path string) ([]byte, error) {
	r, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer safe.Close(ctx, r)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read input", goerr.V("path", path))
	}
	return data, nil
}

func writeJSONLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal output")
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return goerr.Wrap(err, "failed to write output")
	}
	return nil
}

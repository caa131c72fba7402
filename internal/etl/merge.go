package etl

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
)

// MergeResult describes a finished merge.
type MergeResult struct {
	Files []string
	Lines int
	Bytes int64
}

// Merge concatenates every *.csv file of inputDir, in name order, into
// outputFile. The output file is skipped if it lives in inputDir. Byte order
// marks are dropped and each file is made to end with a newline.
func Merge(inputDir, outputFile string, logger *logrus.Logger) (MergeResult, error) {
	if logger == nil {
		logger = logrus.New()
	}

	files, err := filepath.Glob(filepath.Join(inputDir, "*.csv"))
	if err != nil {
		return MergeResult{}, err
	}
	sort.Strings(files)

	outAbs, err := filepath.Abs(outputFile)
	if err != nil {
		return MergeResult{}, err
	}

	var result MergeResult
	var buf bytes.Buffer
	for _, file := range files {
		if abs, err := filepath.Abs(file); err == nil && abs == outAbs {
			continue
		}

		content, err := os.ReadFile(file)
		if err != nil {
			return MergeResult{}, fmt.Errorf("failed to read %s: %w", file, err)
		}
		content = bytes.TrimPrefix(content, bom)
		if len(content) > 0 && content[len(content)-1] != '\n' {
			content = append(content, '\n')
		}

		lines := bytes.Count(content, []byte{'\n'})
		buf.Write(content)
		result.Files = append(result.Files, file)
		result.Lines += lines

		logger.WithFields(logrus.Fields{
			"path":  file,
			"lines": lines,
		}).Info("Merged file")
	}

	if len(result.Files) == 0 {
		return MergeResult{}, fmt.Errorf("no csv files found in %s", inputDir)
	}

	if err := os.MkdirAll(filepath.Dir(outputFile), 0o755); err != nil {
		return MergeResult{}, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outputFile, buf.Bytes(), 0o644); err != nil {
		return MergeResult{}, fmt.Errorf("failed to write %s: %w", outputFile, err)
	}
	result.Bytes = int64(buf.Len())

	logger.WithFields(logrus.Fields{
		"path":  outputFile,
		"files": len(result.Files),
		"lines": result.Lines,
	}).Info("Merge finished")
	return result, nil
}

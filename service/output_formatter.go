package service

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ludo-technologies/crev/domain"
	"gopkg.in/yaml.v3"
)

// OutputFormatterImpl implements the OutputFormatter interface
type OutputFormatterImpl struct {
	reporter domain.Reporter
}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter() *OutputFormatterImpl {
	return &OutputFormatterImpl{reporter: NewMarkdownReporter()}
}

// WriteJSON writes data as indented JSON to the writer
func WriteJSON(writer io.Writer, data interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Format renders the result in the requested format and returns it
func (f *OutputFormatterImpl) Format(result *domain.ReviewResult, format domain.OutputFormat) (string, error) {
	switch format {
	case domain.OutputFormatText, "":
		return f.reporter.Render(result), nil
	case domain.OutputFormatJSON:
		var b strings.Builder
		if err := WriteJSON(&b, result); err != nil {
			return "", err
		}
		return b.String(), nil
	case domain.OutputFormatYAML:
		data, err := yaml.Marshal(result)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", domain.NewUnsupportedOutputError(string(format))
	}
}

// Write renders the result and writes it to the writer
func (f *OutputFormatterImpl) Write(result *domain.ReviewResult, format domain.OutputFormat, writer io.Writer) error {
	output, err := f.Format(result, format)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(writer, output)
	return err
}

var _ domain.OutputFormatter = (*OutputFormatterImpl)(nil)

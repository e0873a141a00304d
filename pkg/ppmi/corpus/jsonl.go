package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cognicore/ppmi/pkg/ppmi/internalerr"
)

// jsonlDoc is the on-disk shape of one corpus line:
//
//	{"id": "doc-1", "sentences": [["a", "b"], ["c"]]}
type jsonlDoc struct {
	ID        string     `json:"id"`
	Sentences [][]string `json:"sentences"`
}

// LoadJSONL loads tokenized documents from a JSONL file
func LoadJSONL(path string, log logrus.FieldLogger) ([]Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	defer f.Close()

	docs, err := ReadJSONL(f, log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return docs, nil
}

// ReadJSONL reads one document per line. Malformed lines are skipped with a
// warning; a stream without any valid document is an error.
func ReadJSONL(r io.Reader, log logrus.FieldLogger) ([]Document, error) {
	if log == nil {
		log = discard()
	}

	var docs []Document
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var raw jsonlDoc
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			log.WithField("line", lineNo).WithError(err).Warn("skipping malformed document")
			continue
		}
		id := raw.ID
		if id == "" {
			id = fmt.Sprintf("line-%d", lineNo)
		}
		docs = append(docs, NewDocument(id, raw.Sentences...))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("no valid documents found: %w", internalerr.ErrInvalidInput)
	}
	return docs, nil
}

// WriteJSONL writes docs in the format ReadJSONL accepts
func WriteJSONL(w io.Writer, docs []Document) error {
	enc := json.NewEncoder(w)
	for _, d := range docs {
		raw := jsonlDoc{ID: d.ID, Sentences: make([][]string, len(d.Sentences))}
		for i, s := range d.Sentences {
			raw.Sentences[i] = s.Tokens
		}
		if err := enc.Encode(raw); err != nil {
			return err
		}
	}
	return nil
}

func discard() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

package strain

import (
	"bufio"
	"bytes"
	"compress/gzip"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"bfoalign/internal/model"
)

//go:embed default_strain.fasta
var defaultFASTA []byte

var ErrNoRecord = errors.New("no fasta record found")

// Strain is a named reference sequence.
type Strain struct {
	Name     string
	Sequence model.Sequence
}

// Default returns the built-in reference strain.
func Default() Strain {
	s, err := Parse(bytes.NewReader(defaultFASTA))
	if err != nil {
		panic(fmt.Sprintf("embedded strain: %v", err))
	}
	return s
}

// Load reads the first record of a FASTA file. "-" reads stdin and a ".gz"
// suffix is decompressed transparently.
func Load(path string) (Strain, error) {
	rc, err := openReader(path)
	if err != nil {
		return Strain{}, err
	}
	defer rc.Close()

	s, err := Parse(rc)
	if err != nil {
		return Strain{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse returns the first FASTA record in r. Sequence lines are concatenated
// and upper-cased; input without a header is read as one bare sequence.
func Parse(r io.Reader) (Strain, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var (
		name    string
		seen    bool
		builder strings.Builder
	)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, ">") {
			if seen {
				break
			}
			seen = true
			if fields := strings.Fields(line[1:]); len(fields) > 0 {
				name = fields[0]
			}
			continue
		}
		seen = true
		builder.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return Strain{}, err
	}
	if !seen {
		return Strain{}, ErrNoRecord
	}

	seq, err := model.ParseSequence(builder.String())
	if err != nil {
		return Strain{}, fmt.Errorf("record %q: %w", name, err)
	}
	return Strain{Name: name, Sequence: seq}, nil
}

func openReader(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(fh)
		if err != nil {
			fh.Close()
			return nil, err
		}
		return struct {
			io.Reader
			io.Closer
		}{Reader: gr, Closer: fh}, nil
	}
	return fh, nil
}

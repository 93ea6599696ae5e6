package importer

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// record is one CSV data row keyed by lower-cased header name. A row the
// CSV reader could not parse carries err and no fields.
type record struct {
	source string
	line   int
	fields map[string]string
	err    error
}

func (r record) get(key string) string {
	return strings.TrimSpace(r.fields[key])
}

func (r record) String() string {
	return fmt.Sprintf("%s:%d", r.source, r.line)
}

// fileParseResult holds the rows of a single file
type fileParseResult struct {
	index   int
	records []record
	err     error
}

// parseFiles reads every file concurrently and returns their rows in
// argument order. Any unreadable file fails the whole batch before a row
// is written.
func parseFiles(ctx context.Context, paths []string) ([]record, error) {
	if len(paths) == 0 {
		return nil, errors.New("no input files provided")
	}

	resultChan := make(chan fileParseResult, len(paths))
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()

			if err := ctx.Err(); err != nil {
				resultChan <- fileParseResult{index: index, err: err}
				return
			}
			records, err := parseFile(path)
			resultChan <- fileParseResult{index: index, records: records, err: err}
		}(i, path)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]fileParseResult, len(paths))
	for result := range resultChan {
		results[result.index] = result
	}

	var all []record
	for i, result := range results {
		if result.err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", paths[i], result.err)
		}
		all = append(all, result.records...)
	}
	return all, nil
}

// parseFile opens a CSV file, transparently decompressing .gz files.
func parseFile(path string) ([]record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	}
	return readRecords(path, r)
}

// readRecords parses a header row followed by data rows. Short rows are
// padded with empty values and unparseable rows are returned with err set,
// so one malformed line never aborts the file.
func readRecords(source string, r io.Reader) ([]record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}

	var records []record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			records = append(records, record{source: source, line: perr.StartLine, err: perr.Err})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
		line, _ := cr.FieldPos(0)

		fields := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(row) {
				fields[name] = row[i]
			}
		}
		records = append(records, record{source: source, line: line, fields: fields})
	}
	return records, nil
}

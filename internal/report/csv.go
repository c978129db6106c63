package report

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/wonny/etf-rs/internal/contracts"
)

// ErrNoDataset means the dataset file has not been produced yet
var ErrNoDataset = errors.New("dataset not found")

// Header is the fixed column order of the dataset file
// ⭐ SSOT: CSV 컬럼 순서는 여기서만
var Header = []string{"종목코드", "종목명", "현재가(원)", "거래량", "1개월", "3개월", "1년", "상대강도"}

// utf8BOM lets spreadsheet tools detect UTF-8 (utf-8-sig)
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes ranked rows with BOM and header
// 수익률은 소수 그대로 기록 (0.0532 = 5.32%), 정밀도 손실 없음
func WriteCSV(w io.Writer, rows []contracts.RankedRow) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			contracts.PadCode(row.Code),
			row.Name,
			formatFloat(row.Price),
			strconv.FormatInt(row.Volume, 10),
			formatFloat(row.Returns.Return1M),
			formatFloat(row.Returns.Return3M),
			formatFloat(row.Returns.Return1Y),
			strconv.Itoa(row.RSRating),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %s: %w", row.Code, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the dataset file, replacing any previous run
func SaveCSV(path string, result *contracts.RankedResult) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		return WriteCSV(w, result.Rows)
	})
}

// ReadCSV parses a dataset written by WriteCSV
func ReadCSV(r io.Reader) ([]contracts.RankedRow, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, name := range Header {
		if header[i] != name {
			return nil, fmt.Errorf("unexpected column %d: %q (want %q)", i, header[i], name)
		}
	}

	rows := make([]contracts.RankedRow, 0)
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		row, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("parse line %d: %w", line, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// LoadCSV reads the dataset file
func LoadCSV(path string) ([]contracts.RankedRow, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoDataset, path)
		}
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// parseRecord converts one CSV record into a row
func parseRecord(record []string) (contracts.RankedRow, error) {
	var (
		row contracts.RankedRow
		err error
	)

	row.Code = contracts.PadCode(record[0])
	row.Name = record[1]

	if row.Price, err = strconv.ParseFloat(record[2], 64); err != nil {
		return row, fmt.Errorf("price: %w", err)
	}
	if row.Volume, err = strconv.ParseInt(record[3], 10, 64); err != nil {
		return row, fmt.Errorf("volume: %w", err)
	}
	if row.Returns.Return1M, err = strconv.ParseFloat(record[4], 64); err != nil {
		return row, fmt.Errorf("1M return: %w", err)
	}
	if row.Returns.Return3M, err = strconv.ParseFloat(record[5], 64); err != nil {
		return row, fmt.Errorf("3M return: %w", err)
	}
	if row.Returns.Return1Y, err = strconv.ParseFloat(record[6], 64); err != nil {
		return row, fmt.Errorf("1Y return: %w", err)
	}
	if row.RSRating, err = strconv.Atoi(record[7]); err != nil {
		return row, fmt.Errorf("RS rating: %w", err)
	}

	return row, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// writeFileAtomic writes through a temp file in the same directory then renames
// 대시보드가 쓰는 도중의 파일을 읽지 않도록
func writeFileAtomic(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	goavro "github.com/linkedin/goavro/v2"
	parquet "github.com/parquet-go/parquet-go"
	"github.com/pierrec/lz4/v4"

	"github.com/razeghi71/docq/document"
	"github.com/razeghi71/docq/parser"
	"github.com/razeghi71/docq/value"
)

// Load reads a file and returns a Collection. The format is chosen by
// extension (.json, .jsonl, .avro, .parquet); .json and .jsonl may carry an
// additional .gz, .zst or .lz4 compression suffix.
func Load(filename string) (*document.Collection, error) {
	format, comp := splitExt(filename)

	if format == ".parquet" {
		if comp != "" {
			return nil, fmt.Errorf("%s: parquet files carry their own compression", filename)
		}
		return loadParquet(filename)
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", filename, err)
	}
	defer f.Close()

	r, err := decompress(f, comp)
	if err != nil {
		return nil, fmt.Errorf("cannot decompress %s: %w", filename, err)
	}

	switch format {
	case ".json":
		return loadJSON(r)
	case ".jsonl":
		return loadJSONL(r)
	case ".avro":
		return loadAvro(r)
	default:
		return nil, fmt.Errorf("unsupported file format %q (supported: .json, .jsonl, .avro, .parquet)", format)
	}
}

// splitExt splits a filename into its format extension and an optional
// compression suffix, both lowercased: "posts.jsonl.gz" -> ".jsonl", ".gz".
func splitExt(filename string) (format, comp string) {
	base := filename
	switch ext := strings.ToLower(filepath.Ext(base)); ext {
	case ".gz", ".zst", ".lz4":
		comp = ext
		base = base[:len(base)-len(ext)]
	}
	return strings.ToLower(filepath.Ext(base)), comp
}

func decompress(r io.Reader, comp string) (io.Reader, error) {
	switch comp {
	case "":
		return r, nil
	case ".gz":
		return gzip.NewReader(r)
	case ".zst":
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	case ".lz4":
		return lz4.NewReader(r), nil
	default:
		return nil, fmt.Errorf("unknown compression suffix %q", comp)
	}
}

func loadJSON(r io.Reader) (*document.Collection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	v, err := parser.Parse(string(data))
	if err != nil {
		return nil, err
	}
	if v.Type != value.TypeArray {
		return nil, fmt.Errorf("expected a top-level JSON array, got %s", v.Type)
	}
	return document.FromValues(v.Arr), nil
}

func loadJSONL(r io.Reader) (*document.Collection, error) {
	scanner := newLineScanner(r)
	var vals []value.Value
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, err := parser.Parse(line)
		if err != nil {
			return nil, fmt.Errorf("invalid JSON on line %d: %w", lineNum, err)
		}
		vals = append(vals, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return document.FromValues(vals), nil
}

// newLineScanner builds a scanner sized for long single-line documents.
func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return scanner
}

func loadAvro(r io.Reader) (*document.Collection, error) {
	ocfr, err := goavro.NewOCFReader(r)
	if err != nil {
		return nil, fmt.Errorf("cannot read Avro OCF: %w", err)
	}

	var vals []value.Value
	for ocfr.Scan() {
		datum, err := ocfr.Read()
		if err != nil {
			return nil, fmt.Errorf("error reading Avro record: %w", err)
		}
		vals = append(vals, avroValue(datum))
	}
	if err := ocfr.Err(); err != nil {
		return nil, fmt.Errorf("error reading Avro file: %w", err)
	}
	return document.FromValues(vals), nil
}

// avroValue converts a decoded Avro datum into the document model. Records
// decode as Go maps with no stable order, so fields are sorted by key to
// keep the resulting object deterministic. Union values appear as
// single-field records.
func avroValue(v any) value.Value {
	switch val := v.(type) {
	case nil:
		return value.Null()
	case bool:
		return value.BoolVal(val)
	case int32:
		return value.IntVal(int64(val))
	case int64:
		return value.IntVal(val)
	case float32:
		return value.FloatVal(float64(val))
	case float64:
		return value.FloatVal(val)
	case string:
		return value.StrVal(val)
	case []byte:
		return value.StrVal(string(val))
	case []any:
		elems := make([]value.Value, len(val))
		for i, e := range val {
			elems[i] = avroValue(e)
		}
		return value.ArrVal(elems)
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := value.NewObject()
		for _, k := range keys {
			obj.Set(k, avroValue(val[k]))
		}
		return value.ObjVal(obj)
	default:
		return value.StrVal(fmt.Sprintf("%v", val))
	}
}

func loadParquet(filename string) (*document.Collection, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", filename, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("cannot stat %s: %w", filename, err)
	}
	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("cannot read parquet from %s: %w", filename, err)
	}

	fields := pf.Schema().Fields()
	var vals []value.Value
	for _, rg := range pf.RowGroups() {
		rows := rg.Rows()
		buf := make([]parquet.Row, 128)
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				obj := value.NewObject()
				for _, pv := range row {
					col := pv.Column()
					if col < 0 || col >= len(fields) {
						continue
					}
					obj.Set(fields[col].Name(), parquetValue(pv))
				}
				vals = append(vals, value.ObjVal(obj))
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("error reading parquet rows: %w", err)
			}
		}
		rows.Close()
	}
	return document.FromValues(vals), nil
}

func parquetValue(v parquet.Value) value.Value {
	if v.IsNull() {
		return value.Null()
	}
	switch v.Kind() {
	case parquet.Boolean:
		return value.BoolVal(v.Boolean())
	case parquet.Int32:
		return value.IntVal(int64(v.Int32()))
	case parquet.Int64:
		return value.IntVal(v.Int64())
	case parquet.Float:
		return value.FloatVal(float64(v.Float()))
	case parquet.Double:
		return value.FloatVal(v.Double())
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return value.StrVal(string(v.ByteArray()))
	default:
		return value.StrVal(v.String())
	}
}

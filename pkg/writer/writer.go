package writer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cuemby/siloflow/pkg/metrics"
	"github.com/cuemby/siloflow/pkg/types"
	"github.com/google/uuid"
	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/writer"
)

// Writer encodes RowBatches into self-describing Parquet files, one
// file per batch, named parquet-<uuid> the way the prototype this
// pipeline replaces did — only with a real columnar encoder instead
// of an Arrow-to-Parquet TODO.
type Writer struct{}

// New returns a Writer. It takes no schema: the schema travels with
// each RowBatch, so a single Writer serves every schema in the
// registry.
func New() *Writer {
	return &Writer{}
}

// Write encodes batch into one OutputFile. An empty batch still
// produces a valid, empty Parquet file — callers that want to skip
// empty batches check batch.Len() before calling Write.
func (w *Writer) Write(batch *types.RowBatch) (types.OutputFile, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.WriteDuration)

	jsonSchema, err := schemaToJSON(batch.Schema)
	if err != nil {
		return types.OutputFile{}, err
	}

	fw := buffer.NewBufferFile()

	pw, err := writer.NewJSONWriter(jsonSchema, fw, 4)
	if err != nil {
		return types.OutputFile{}, types.Wrap(types.KindInternal, "create parquet writer", err).WithContext("", "", batch.Schema.ID)
	}

	for i := 0; i < batch.Len(); i++ {
		row, err := rowJSON(batch, i)
		if err != nil {
			return types.OutputFile{}, err
		}
		if err := pw.Write(row); err != nil {
			return types.OutputFile{}, types.Wrap(types.KindInternal, "write parquet row", err).WithContext("", "", batch.Schema.ID)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return types.OutputFile{}, types.Wrap(types.KindInternal, "finalize parquet file", err).WithContext("", "", batch.Schema.ID)
	}

	return types.OutputFile{
		Name:    "parquet-" + uuid.NewString(),
		Content: fw.Bytes(),
	}, nil
}

// schemaToJSON translates a Schema into the JSON schema description
// xitongsys/parquet-go's JSONWriter expects: one root message with
// one optional/required leaf field per column.
func schemaToJSON(schema types.Schema) (string, error) {
	type field struct {
		Tag string `json:"Tag"`
	}
	type jsonSchema struct {
		Tag    string  `json:"Tag"`
		Fields []field `json:"Fields"`
	}

	js := jsonSchema{Tag: "name=root, repetitiontype=REQUIRED"}
	for _, c := range schema.Columns {
		rep := "REQUIRED"
		if c.Nullable {
			rep = "OPTIONAL"
		}

		var tag string
		switch c.Type {
		case types.ColumnTypeInt64:
			tag = fmt.Sprintf("name=%s, type=INT64, repetitiontype=%s", c.Name, rep)
		case types.ColumnTypeTimestampNS:
			tag = fmt.Sprintf("name=%s, type=INT64, logicaltype=TIMESTAMP, logicaltype.isadjustedtoutc=true, logicaltype.unit=NANOS, repetitiontype=%s", c.Name, rep)
		case types.ColumnTypeString:
			fallthrough
		default:
			tag = fmt.Sprintf("name=%s, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=%s", c.Name, rep)
		}
		js.Fields = append(js.Fields, field{Tag: tag})
	}

	data, err := json.Marshal(js)
	if err != nil {
		return "", types.Wrap(types.KindInternal, "marshal parquet schema", err).WithContext("", "", schema.ID)
	}
	return string(data), nil
}

// rowJSON renders row i of batch as the JSON object the JSONWriter
// expects: absent/omitted key for a null optional value, a typed
// scalar otherwise.
func rowJSON(batch *types.RowBatch, i int) (string, error) {
	obj := make(map[string]interface{}, len(batch.Schema.Columns))

	for _, c := range batch.Schema.Columns {
		v := batch.Columns[c.Name][i]
		if v == nil {
			continue
		}

		switch c.Type {
		case types.ColumnTypeInt64, types.ColumnTypeTimestampNS:
			n, err := strconv.ParseInt(strings.TrimSpace(*v), 10, 64)
			if err != nil {
				// An unparseable int64/timestamp is a per-event parse
				// miss, not a batch failure: the value is dropped (left
				// null) and counted, the row is still written.
				metrics.ParseMisses.Inc()
				continue
			}
			obj[c.Name] = n
		default:
			obj[c.Name] = *v
		}
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return "", types.Wrap(types.KindInternal, "marshal parquet row", err).WithContext("", "", batch.Schema.ID)
	}
	return string(data), nil
}

package sparse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ScoreColumn is the name of the value column in Record.
const ScoreColumn = "score"

// ShapeKey is the schema metadata key holding the declared board shape.
const ShapeKey = "abx.shape"

// Schema returns the COO schema for a board of the given shape:
// dim_0 … dim_{rank-1} as int64, then score as float64. The shape itself is
// carried in the schema metadata under ShapeKey, comma separated.
func Schema(shape []int) *arrow.Schema {
	rank := len(shape)
	fields := make([]arrow.Field, 0, rank+1)
	for k := 0; k < rank; k++ {
		fields = append(fields, arrow.Field{Name: fmt.Sprintf("dim_%d", k), Type: arrow.PrimitiveTypes.Int64})
	}
	fields = append(fields, arrow.Field{Name: ScoreColumn, Type: arrow.PrimitiveTypes.Float64})

	dims := make([]string, rank)
	for k, d := range shape {
		dims[k] = strconv.Itoa(d)
	}
	meta := arrow.NewMetadata([]string{ShapeKey}, []string{strings.Join(dims, ",")})
	return arrow.NewSchema(fields, &meta)
}

// Record exports the populated entries as an Arrow record in build order.
// The caller owns the record and must Release it.
func (s *Scores) Record(mem memory.Allocator) arrow.Record {
	rank := len(s.shape)
	b := array.NewRecordBuilder(mem, Schema(s.shape))
	defer b.Release()

	for k := 0; k < rank; k++ {
		col := b.Field(k).(*array.Int64Builder)
		col.Reserve(len(s.coords))
		for _, c := range s.coords {
			col.Append(int64(c[k]))
		}
	}
	b.Field(rank).(*array.Float64Builder).AppendValues(s.values, nil)

	return b.NewRecord()
}

package adapter

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/modeldoctor/pkg/core"
)

// columnTypes maps lower-cased base SQL type names to normalized types.
var columnTypes = map[string]core.ColumnType{
	"character varying": core.ColumnTypeString,
	"varchar":           core.ColumnTypeString,
	"character":         core.ColumnTypeString,
	"char":              core.ColumnTypeString,
	"bpchar":            core.ColumnTypeString,
	"nvarchar":          core.ColumnTypeString,
	"nchar":             core.ColumnTypeString,
	"string":            core.ColumnTypeString,

	"text":       core.ColumnTypeText,
	"mediumtext": core.ColumnTypeText,
	"longtext":   core.ColumnTypeText,
	"clob":       core.ColumnTypeText,

	"integer":  core.ColumnTypeInteger,
	"int":      core.ColumnTypeInteger,
	"int2":     core.ColumnTypeInteger,
	"int4":     core.ColumnTypeInteger,
	"int8":     core.ColumnTypeInteger,
	"smallint": core.ColumnTypeInteger,
	"bigint":   core.ColumnTypeInteger,
	"tinyint":  core.ColumnTypeInteger,
	"hugeint":  core.ColumnTypeInteger,
	"ubigint":  core.ColumnTypeInteger,
	"uinteger": core.ColumnTypeInteger,

	"real":             core.ColumnTypeFloat,
	"float":            core.ColumnTypeFloat,
	"float4":           core.ColumnTypeFloat,
	"float8":           core.ColumnTypeFloat,
	"double":           core.ColumnTypeFloat,
	"double precision": core.ColumnTypeFloat,

	"numeric": core.ColumnTypeDecimal,
	"decimal": core.ColumnTypeDecimal,

	"boolean": core.ColumnTypeBoolean,
	"bool":    core.ColumnTypeBoolean,

	"date": core.ColumnTypeDate,

	"timestamp":                   core.ColumnTypeDatetime,
	"timestamp without time zone": core.ColumnTypeDatetime,
	"timestamp with time zone":    core.ColumnTypeDatetime,
	"timestamptz":                 core.ColumnTypeDatetime,
	"datetime":                    core.ColumnTypeDatetime,

	"time":                   core.ColumnTypeTime,
	"time without time zone": core.ColumnTypeTime,
	"time with time zone":    core.ColumnTypeTime,

	"bytea":     core.ColumnTypeBinary,
	"blob":      core.ColumnTypeBinary,
	"binary":    core.ColumnTypeBinary,
	"varbinary": core.ColumnTypeBinary,

	"json":  core.ColumnTypeJSON,
	"jsonb": core.ColumnTypeJSON,

	"uuid": core.ColumnTypeUUID,
}

// NormalizeType maps a raw SQL type such as "VARCHAR(255)" or
// "character varying" to a normalized column type and the character limit
// embedded in the type, if any.
func NormalizeType(sqlType string) (core.ColumnType, *int) {
	base, limit := splitTypeLimit(strings.ToLower(strings.TrimSpace(sqlType)))
	typ, ok := columnTypes[base]
	if !ok {
		return core.ColumnTypeOther, nil
	}
	if typ != core.ColumnTypeString {
		return typ, nil
	}
	return typ, limit
}

// splitTypeLimit separates "varchar(255)" into "varchar" and 255. Precision
// lists such as "numeric(10,2)" keep no limit.
func splitTypeLimit(t string) (string, *int) {
	open := strings.IndexByte(t, '(')
	if open < 0 || !strings.HasSuffix(t, ")") {
		return t, nil
	}
	base := strings.TrimSpace(t[:open])
	arg := strings.TrimSpace(t[open+1 : len(t)-1])
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 {
		return base, nil
	}
	return base, &n
}

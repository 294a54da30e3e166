package catalog

// ScalarKind enumerates the well-known built-in types the mapper has a
// fixed target for. Anything outside this table resolves to Opaque.
type ScalarKind int

const (
	ScalarBool ScalarKind = iota
	ScalarInt16
	ScalarInt32
	ScalarInt64
	ScalarFloat32
	ScalarFloat64
	ScalarDecimal
	ScalarMoney
	ScalarText
	ScalarBytes
	ScalarDate
	ScalarTime
	ScalarTimeTZ
	ScalarTimestamp
	ScalarTimestampTZ
	ScalarInterval
	ScalarUUID
	ScalarJSON
	ScalarXML
	ScalarInet
	ScalarCIDR
	ScalarMacAddr
	ScalarBit
	ScalarTSVector
	ScalarTSQuery
	ScalarPoint
	ScalarLine
	ScalarLineSegment
	ScalarBox
	ScalarPath
	ScalarPolygon
	ScalarCircle
	ScalarOID
)

var scalarNames = map[ScalarKind]string{
	ScalarBool:        "bool",
	ScalarInt16:       "int16",
	ScalarInt32:       "int32",
	ScalarInt64:       "int64",
	ScalarFloat32:     "float32",
	ScalarFloat64:     "float64",
	ScalarDecimal:     "decimal",
	ScalarMoney:       "money",
	ScalarText:        "text",
	ScalarBytes:       "bytes",
	ScalarDate:        "date",
	ScalarTime:        "time",
	ScalarTimeTZ:      "timetz",
	ScalarTimestamp:   "timestamp",
	ScalarTimestampTZ: "timestamptz",
	ScalarInterval:    "interval",
	ScalarUUID:        "uuid",
	ScalarJSON:        "json",
	ScalarXML:         "xml",
	ScalarInet:        "inet",
	ScalarCIDR:        "cidr",
	ScalarMacAddr:     "macaddr",
	ScalarBit:         "bit",
	ScalarTSVector:    "tsvector",
	ScalarTSQuery:     "tsquery",
	ScalarPoint:       "point",
	ScalarLine:        "line",
	ScalarLineSegment: "lseg",
	ScalarBox:         "box",
	ScalarPath:        "path",
	ScalarPolygon:     "polygon",
	ScalarCircle:      "circle",
	ScalarOID:         "oid",
}

func (k ScalarKind) String() string {
	if name, ok := scalarNames[k]; ok {
		return name
	}
	return "unknown"
}

// scalarKinds is the fixed lookup table from raw catalog type names to
// scalar kinds. It covers Postgres udt names plus the MySQL and SQLite
// spellings, so all drivers resolve through the same table.
var scalarKinds = map[string]ScalarKind{
	// booleans
	"bool":    ScalarBool,
	"boolean": ScalarBool,

	// integers
	"int2":      ScalarInt16,
	"smallint":  ScalarInt16,
	"tinyint":   ScalarInt16,
	"int4":      ScalarInt32,
	"int":       ScalarInt32,
	"mediumint": ScalarInt32,
	"year":      ScalarInt32,
	"int8":      ScalarInt64,
	"bigint":    ScalarInt64,
	// sqlite's INTEGER affinity is 64-bit
	"integer": ScalarInt64,

	// floating point
	"float4": ScalarFloat32,
	"float":  ScalarFloat32,
	"float8": ScalarFloat64,
	"double": ScalarFloat64,
	"double precision": ScalarFloat64,
	"real":             ScalarFloat64,

	// exact numerics
	"numeric": ScalarDecimal,
	"decimal": ScalarDecimal,
	"money":   ScalarMoney,

	// text
	"text":              ScalarText,
	"varchar":           ScalarText,
	"character varying": ScalarText,
	"bpchar":            ScalarText,
	"char":              ScalarText,
	"character":         ScalarText,
	"name":              ScalarText,
	"citext":            ScalarText,
	"tinytext":          ScalarText,
	"mediumtext":        ScalarText,
	"longtext":          ScalarText,
	"clob":              ScalarText,
	"nvarchar":          ScalarText,
	"nchar":             ScalarText,

	// binary
	"bytea":      ScalarBytes,
	"blob":       ScalarBytes,
	"tinyblob":   ScalarBytes,
	"mediumblob": ScalarBytes,
	"longblob":   ScalarBytes,
	"binary":     ScalarBytes,
	"varbinary":  ScalarBytes,

	// date and time
	"date":        ScalarDate,
	"time":        ScalarTime,
	"timetz":      ScalarTimeTZ,
	"timestamp":   ScalarTimestamp,
	"datetime":    ScalarTimestamp,
	"timestamptz": ScalarTimestampTZ,
	"interval":    ScalarInterval,

	// identifiers and documents
	"uuid":  ScalarUUID,
	"json":  ScalarJSON,
	"jsonb": ScalarJSON,
	"xml":   ScalarXML,

	// network addresses
	"inet":     ScalarInet,
	"cidr":     ScalarCIDR,
	"macaddr":  ScalarMacAddr,
	"macaddr8": ScalarMacAddr,

	// bit strings
	"bit":    ScalarBit,
	"varbit": ScalarBit,

	// full-text search
	"tsvector": ScalarTSVector,
	"tsquery":  ScalarTSQuery,

	// geometry
	"point":   ScalarPoint,
	"line":    ScalarLine,
	"lseg":    ScalarLineSegment,
	"box":     ScalarBox,
	"path":    ScalarPath,
	"polygon": ScalarPolygon,
	"circle":  ScalarCircle,

	// object identifiers
	"oid":      ScalarOID,
	"regclass": ScalarOID,
	"regtype":  ScalarOID,
	"regproc":  ScalarOID,
}

package report

import (
	"sort"
	"strings"
)

type typeResolver func(formatHint string) CanonicalType

func fixed(t CanonicalType) typeResolver {
	return func(string) CanonicalType { return t }
}

// dateOrTime resolves to DateTime when the format hint carries an hour token.
func dateOrTime(formatHint string) CanonicalType {
	if strings.ContainsAny(formatHint, "HhkK") {
		return TypeDateTime
	}
	return TypeDate
}

var remoteTypes = map[string]typeResolver{
	"java.lang.String":     fixed(TypeString),
	"java.lang.Boolean":    fixed(TypeBoolean),
	"java.lang.Number":     fixed(TypeNumber),
	"java.util.Date":       dateOrTime,
	"java.sql.Date":        dateOrTime,
	"java.sql.Time":        fixed(TypeDateTime),
	"java.sql.Timestamp":   fixed(TypeDateTime),
	"java.lang.Double":     fixed(TypeNumber),
	"java.lang.Float":      fixed(TypeNumber),
	"java.lang.Integer":    fixed(TypeInteger),
	"java.lang.Long":       fixed(TypeInteger),
	"java.lang.Short":      fixed(TypeInteger),
	"java.math.BigInteger": fixed(TypeInteger),
	"java.math.BigDecimal": fixed(TypeNumber),
}

// MapType translates a remote type name and optional data-format hint into a
// canonical type.
func MapType(remoteType, formatHint string) (CanonicalType, error) {
	resolve, ok := remoteTypes[remoteType]
	if !ok {
		return "", newError(CodeUnknownParameterType, "", remoteType, "unhandled parameter type", nil)
	}
	return resolve(formatHint), nil
}

// RemoteTypeNames returns the supported remote type names, sorted.
func RemoteTypeNames() []string {
	names := make([]string, 0, len(remoteTypes))
	for name := range remoteTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

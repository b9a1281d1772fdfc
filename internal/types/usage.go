package types

import "strings"

type UsageDirection string

const (
	UsageConsumes UsageDirection = "CONSUMES"
	UsageProduces UsageDirection = "PRODUCES"
)

var usage_aliases = map[string]UsageDirection{
	"CONSUMES":           UsageConsumes,
	"CONSUMED":           UsageConsumes,
	"ALWAYS_CONSUMED":    UsageConsumes,
	"SOMETIMES_CONSUMED": UsageConsumes,
	"PRODUCES":           UsageProduces,
	"PRODUCED":           UsageProduces,
	"ALWAYS_PRODUCED":    UsageProduces,
	"SOMETIMES_PRODUCED": UsageProduces,
}

func ParseUsageDirection(raw string) (UsageDirection, bool) {
	u, ok := usage_aliases[strings.ToUpper(strings.TrimSpace(raw))]
	return u, ok
}

func (u UsageDirection) IsValid() bool {
	return u == UsageConsumes || u == UsageProduces
}

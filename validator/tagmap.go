package validator

var tagMap = map[string]string{
	"required":      "required",
	"omitempty":     "optional",
	"mask":          "invalid_mask",
	"max":           "too_long",
	"min":           "too_short",
	"gt":            "too_small",
	"gte":           "too_small_or_equal",
	"lte":           "too_large_or_equal",
	"oneof":         "invalid_choice",
	"hostname_port": "invalid_address",
	"file":          "file_not_found",
	"excluded_with": "mutually_exclusive",
}

func mapTagToCode(tag string) string {
	if code, ok := tagMap[tag]; ok {
		return code
	}
	return "invalid"
}

// TagMap returns a copy of the tag to reason mapping.
func TagMap() map[string]string {
	out := make(map[string]string, len(tagMap))
	for k, v := range tagMap {
		out[k] = v
	}
	return out
}

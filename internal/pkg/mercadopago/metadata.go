package mercadopago

// Metadata keys attached to a preference at checkout and read back from the
// payment object during webhook reconciliation. Mercado Pago snake_cases
// metadata keys on the payment object, so only snake_case keys are used.
const (
	MetadataUserSubject  = "user_id"
	MetadataUserEmail    = "user_email"
	MetadataOrderID      = "order_id"
	MetadataEntitlements = "entitlements"
)

// MetadataString extracts a string value from payment metadata.
func MetadataString(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// MetadataStrings extracts a list of strings from payment metadata. The
// processor returns JSON arrays as []interface{}.
func MetadataStrings(m map[string]interface{}, key string) []string {
	if m == nil {
		return nil
	}
	raw, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// MetadataUint extracts a numeric id from payment metadata. JSON numbers
// decode as float64; ids stored as strings are parsed too.
func MetadataUint(m map[string]interface{}, key string) uint {
	if m == nil {
		return 0
	}
	switch v := m[key].(type) {
	case float64:
		if v > 0 {
			return uint(v)
		}
	case string:
		var n uint
		for _, r := range v {
			if r < '0' || r > '9' {
				return 0
			}
			n = n*10 + uint(r-'0')
		}
		return n
	}
	return 0
}

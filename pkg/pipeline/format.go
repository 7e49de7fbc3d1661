package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	dataframe "github.com/rocketlaunchr/dataframe-go"
)

// FormatValue renders an immediate pipeline value for display. Lists render
// element-wise, tables render as a compact shape summary rather than their
// full contents.
func FormatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "empty"
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return v
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = FormatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *dataframe.DataFrame:
		return fmt.Sprintf("[table %dx%d]", v.NRows(), len(v.Series))
	default:
		return fmt.Sprintf("%v", v)
	}
}

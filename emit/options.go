package emit

// CStandard names the dialect the front end accepts; the parser itself
// does not vary by standard yet, but the field is part of the driver
// surface (spec.md §6) and config.go unmarshals into it.
type CStandard int

const (
	C89 CStandard = iota
	C99
	C11
)

func (s CStandard) String() string {
	switch s {
	case C89:
		return "C89"
	case C99:
		return "C99"
	case C11:
		return "C11"
	default:
		return "unknown"
	}
}

// MacroDefine is one `-D name=value` style predefined macro.
type MacroDefine struct {
	Name  string
	Value string
}

// Options is the driver surface's recognized options record (spec.md §6).
// The CLI, the optional YAML config file, and the library entry point
// (Compile) all agree on this one shape.
type Options struct {
	OptimizeLevel    int // 0..3
	EmitDebugInfo    bool
	EnableWarnings   bool
	WarningsAsErrors bool
	PreprocessOnly   bool
	CStandard        CStandard
	IncludeDirs      []string
	MacroDefines     []MacroDefine
}

// DefaultOptions mirrors the conservative defaults a bare `astc compile`
// invocation uses absent a config file or flags.
func DefaultOptions() Options {
	return Options{
		OptimizeLevel:  0,
		EnableWarnings: true,
		CStandard:      C99,
	}
}

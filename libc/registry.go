// Package libc defines the closed registry of 16-bit libc call IDs
// (spec.md §6), shared by the parser (which tags call expressions against
// it at construction time) and the forwarder (which dispatches against
// it at VM runtime). A single registry instance is the one source of
// truth for both, keeping spec.md §3's invariant — "every call node whose
// callee names a libc function has its is_libc flag set and call-ID
// populated" — trivially satisfiable by a name lookup.
package libc

// ID is a 16-bit numeric identifier drawn from the fixed registry below.
// Each ID denotes one host function, its parameter count, and an implied
// signature.
type ID uint16

// Category groups related libc entries for diagnostics and for the
// forwarder's per-category statistics counters (spec.md §4.6).
type Category int

const (
	CategoryMemory Category = iota
	CategoryStrings
	CategoryMemoryOps
	CategoryFormattedIO
	CategoryFileIO
	CategoryMath
	CategoryConversion
	CategoryProcess
	CategoryUnbufferedIO
	CategoryExtraStrings
	CategoryCType
	CategoryTime
	CategorySortSearchRNG
)

func (c Category) String() string {
	switch c {
	case CategoryMemory:
		return "memory"
	case CategoryStrings:
		return "strings"
	case CategoryMemoryOps:
		return "memory-ops"
	case CategoryFormattedIO:
		return "formatted-io"
	case CategoryFileIO:
		return "file-io"
	case CategoryMath:
		return "math"
	case CategoryConversion:
		return "conversion"
	case CategoryProcess:
		return "process"
	case CategoryUnbufferedIO:
		return "unbuffered-io"
	case CategoryExtraStrings:
		return "extra-strings"
	case CategoryCType:
		return "ctype"
	case CategoryTime:
		return "time"
	case CategorySortSearchRNG:
		return "sort-search-rng"
	default:
		return "unknown"
	}
}

// ArgKind describes how a single argument word should be reinterpreted
// when it crosses the forwarder boundary (spec.md §4.6 "argument
// marshalling").
type ArgKind int

const (
	ArgInt ArgKind = iota
	ArgUint
	ArgPointer
	ArgFloat
)

// Entry is the static metadata the registry carries for one libc ID: its
// canonical name (diagnostics only), category, expected argument count,
// per-argument reinterpretation kind, and the kind of its return value.
type Entry struct {
	ID       ID
	Name     string
	Category Category
	Args     []ArgKind
	Variadic bool
	Returns  ArgKind
}

// ArgCount reports the entry's fixed argument count (its Variadic
// functions still report their fixed prefix; the forwarder reads the
// actual pushed count off the VM stack at dispatch time).
func (e Entry) ArgCount() int { return len(e.Args) }

// byName and byID are the registry's closed set of (name -> Entry) and
// (ID -> Entry) mappings. IDs are stable: new entries occupy unused slots in their
// category's range and never renumber existing ones (spec.md §6).
var byName = map[string]Entry{}
var byID = map[ID]Entry{}

func register(id ID, name string, cat Category, returns ArgKind, variadic bool, args ...ArgKind) {
	e := Entry{ID: id, Name: name, Category: cat, Args: args, Variadic: variadic, Returns: returns}
	byName[name] = e
	byID[id] = e
}

func init() {
	// 0x0001-0x000F memory
	register(0x0001, "malloc", CategoryMemory, ArgPointer, false, ArgUint)
	register(0x0002, "free", CategoryMemory, ArgInt, false, ArgPointer)
	register(0x0003, "calloc", CategoryMemory, ArgPointer, false, ArgUint, ArgUint)
	register(0x0004, "realloc", CategoryMemory, ArgPointer, false, ArgPointer, ArgUint)

	// 0x0010-0x001F strings
	register(0x0010, "strlen", CategoryStrings, ArgUint, false, ArgPointer)
	register(0x0011, "strcpy", CategoryStrings, ArgPointer, false, ArgPointer, ArgPointer)
	register(0x0012, "strncpy", CategoryStrings, ArgPointer, false, ArgPointer, ArgPointer, ArgUint)
	register(0x0013, "strcmp", CategoryStrings, ArgInt, false, ArgPointer, ArgPointer)
	register(0x0014, "strcat", CategoryStrings, ArgPointer, false, ArgPointer, ArgPointer)
	register(0x0015, "strchr", CategoryStrings, ArgPointer, false, ArgPointer, ArgInt)
	register(0x0016, "strstr", CategoryStrings, ArgPointer, false, ArgPointer, ArgPointer)
	register(0x0017, "strncmp", CategoryStrings, ArgInt, false, ArgPointer, ArgPointer, ArgUint)

	// 0x0020-0x002F memory ops
	register(0x0020, "memcpy", CategoryMemoryOps, ArgPointer, false, ArgPointer, ArgPointer, ArgUint)
	register(0x0021, "memmove", CategoryMemoryOps, ArgPointer, false, ArgPointer, ArgPointer, ArgUint)
	register(0x0022, "memset", CategoryMemoryOps, ArgPointer, false, ArgPointer, ArgInt, ArgUint)
	register(0x0023, "memcmp", CategoryMemoryOps, ArgInt, false, ArgPointer, ArgPointer, ArgUint)

	// 0x0030-0x003F formatted I/O
	register(0x0030, "printf", CategoryFormattedIO, ArgInt, true, ArgPointer)
	register(0x0031, "fprintf", CategoryFormattedIO, ArgInt, true, ArgPointer, ArgPointer)
	register(0x0032, "sprintf", CategoryFormattedIO, ArgInt, true, ArgPointer, ArgPointer)
	register(0x0033, "snprintf", CategoryFormattedIO, ArgInt, true, ArgPointer, ArgUint, ArgPointer)
	register(0x0034, "scanf", CategoryFormattedIO, ArgInt, true, ArgPointer)
	register(0x0035, "fscanf", CategoryFormattedIO, ArgInt, true, ArgPointer, ArgPointer)
	register(0x0036, "sscanf", CategoryFormattedIO, ArgInt, true, ArgPointer, ArgPointer)

	// 0x0040-0x004F file I/O
	register(0x0040, "fopen", CategoryFileIO, ArgPointer, false, ArgPointer, ArgPointer)
	register(0x0041, "fclose", CategoryFileIO, ArgInt, false, ArgPointer)
	register(0x0042, "fread", CategoryFileIO, ArgUint, false, ArgPointer, ArgUint, ArgUint, ArgPointer)
	register(0x0043, "fwrite", CategoryFileIO, ArgUint, false, ArgPointer, ArgUint, ArgUint, ArgPointer)
	register(0x0044, "fseek", CategoryFileIO, ArgInt, false, ArgPointer, ArgInt, ArgInt)
	register(0x0045, "ftell", CategoryFileIO, ArgInt, false, ArgPointer)
	register(0x0046, "feof", CategoryFileIO, ArgInt, false, ArgPointer)
	register(0x0047, "ferror", CategoryFileIO, ArgInt, false, ArgPointer)

	// 0x0050-0x005F math
	register(0x0050, "abs", CategoryMath, ArgInt, false, ArgInt)
	register(0x0051, "sqrt", CategoryMath, ArgFloat, false, ArgFloat)
	register(0x0052, "pow", CategoryMath, ArgFloat, false, ArgFloat, ArgFloat)
	register(0x0053, "sin", CategoryMath, ArgFloat, false, ArgFloat)
	register(0x0054, "cos", CategoryMath, ArgFloat, false, ArgFloat)
	register(0x0055, "tan", CategoryMath, ArgFloat, false, ArgFloat)
	register(0x0056, "floor", CategoryMath, ArgFloat, false, ArgFloat)
	register(0x0057, "ceil", CategoryMath, ArgFloat, false, ArgFloat)
	register(0x0058, "fabs", CategoryMath, ArgFloat, false, ArgFloat)

	// 0x0060-0x006F conversion
	register(0x0060, "atoi", CategoryConversion, ArgInt, false, ArgPointer)
	register(0x0061, "atol", CategoryConversion, ArgInt, false, ArgPointer)
	register(0x0062, "atof", CategoryConversion, ArgFloat, false, ArgPointer)
	register(0x0063, "strtol", CategoryConversion, ArgInt, false, ArgPointer, ArgPointer, ArgInt)
	register(0x0064, "strtod", CategoryConversion, ArgFloat, false, ArgPointer, ArgPointer)

	// 0x0070-0x007F process
	register(0x0070, "exit", CategoryProcess, ArgInt, false, ArgInt)
	register(0x0071, "abort", CategoryProcess, ArgInt, false)
	register(0x0072, "system", CategoryProcess, ArgInt, false, ArgPointer)
	register(0x0073, "getenv", CategoryProcess, ArgPointer, false, ArgPointer)

	// 0x0080-0x008F unbuffered I/O
	register(0x0080, "puts", CategoryUnbufferedIO, ArgInt, false, ArgPointer)
	register(0x0081, "putchar", CategoryUnbufferedIO, ArgInt, false, ArgInt)
	register(0x0082, "getchar", CategoryUnbufferedIO, ArgInt, false)
	register(0x0083, "fgetc", CategoryUnbufferedIO, ArgInt, false, ArgPointer)
	register(0x0084, "fputc", CategoryUnbufferedIO, ArgInt, false, ArgInt, ArgPointer)
	register(0x0085, "fgets", CategoryUnbufferedIO, ArgPointer, false, ArgPointer, ArgInt, ArgPointer)
	register(0x0086, "fputs", CategoryUnbufferedIO, ArgInt, false, ArgPointer, ArgPointer)

	// 0x0090-0x009F extra strings
	register(0x0090, "strdup", CategoryExtraStrings, ArgPointer, false, ArgPointer)
	register(0x0091, "strtok", CategoryExtraStrings, ArgPointer, false, ArgPointer, ArgPointer)
	register(0x0092, "strrchr", CategoryExtraStrings, ArgPointer, false, ArgPointer, ArgInt)

	// 0x00A0-0x00AF ctype
	register(0x00A0, "isalpha", CategoryCType, ArgInt, false, ArgInt)
	register(0x00A1, "isdigit", CategoryCType, ArgInt, false, ArgInt)
	register(0x00A2, "isspace", CategoryCType, ArgInt, false, ArgInt)
	register(0x00A3, "toupper", CategoryCType, ArgInt, false, ArgInt)
	register(0x00A4, "tolower", CategoryCType, ArgInt, false, ArgInt)
	register(0x00A5, "isupper", CategoryCType, ArgInt, false, ArgInt)
	register(0x00A6, "islower", CategoryCType, ArgInt, false, ArgInt)
	register(0x00A7, "isalnum", CategoryCType, ArgInt, false, ArgInt)

	// 0x00B0-0x00BF time
	register(0x00B0, "time", CategoryTime, ArgInt, false, ArgPointer)
	register(0x00B1, "clock", CategoryTime, ArgInt, false)
	register(0x00B2, "difftime", CategoryTime, ArgFloat, false, ArgInt, ArgInt)

	// 0x00C0-0x00CF sort/search/rng
	register(0x00C0, "qsort", CategorySortSearchRNG, ArgInt, false, ArgPointer, ArgUint, ArgUint, ArgPointer)
	register(0x00C1, "bsearch", CategorySortSearchRNG, ArgPointer, false, ArgPointer, ArgPointer, ArgUint, ArgUint, ArgPointer)
	register(0x00C2, "rand", CategorySortSearchRNG, ArgInt, false)
	register(0x00C3, "srand", CategorySortSearchRNG, ArgInt, false, ArgUint)
}

// Lookup finds a registry entry by function name, as the parser does
// while tagging call expressions (spec.md §4.2).
func Lookup(name string) (Entry, bool) {
	e, ok := byName[name]
	return e, ok
}

// LookupID finds a registry entry by call ID, as the forwarder does at
// dispatch time (spec.md §4.6). A lookup miss (unregistered ID) reports
// ok == false; the forwarder treats that as a nonfatal dispatch error.
func LookupID(id ID) (Entry, bool) {
	e, ok := byID[id]
	return e, ok
}

package errx

// RegistryEntry describes a registered error code.
type RegistryEntry struct {
	Code        string
	Description string
}

const (
	CodeCLI      = "70000"
	CodeTool     = "71000"
	CodeRegistry = "72000"
	CodeCommand  = "73000"
	CodePipeline = "74000"
	CodeConfig   = "79000"
)

const (
	DescCLI      = "CLI/input validation error"
	DescTool     = "Container tool error"
	DescRegistry = "Registry error"
	DescCommand  = "Command execution error"
	DescPipeline = "Pipeline error"
	DescConfig   = "Configuration error"
)

// registryEntries is ordered by code.
var registryEntries = []RegistryEntry{
	{Code: CodeCLI, Description: DescCLI},
	{Code: CodeTool, Description: DescTool},
	{Code: CodeRegistry, Description: DescRegistry},
	{Code: CodeCommand, Description: DescCommand},
	{Code: CodePipeline, Description: DescPipeline},
	{Code: CodeConfig, Description: DescConfig},
}

var registryMap = func() map[string]string {
	m := make(map[string]string, len(registryEntries))
	for _, entry := range registryEntries {
		m[entry.Code] = entry.Description
	}
	return m
}()

// ErrorRegistry returns a copy of the registered codes in code order.
func ErrorRegistry() []RegistryEntry {
	out := make([]RegistryEntry, len(registryEntries))
	copy(out, registryEntries)
	return out
}

// DescriptionFor returns the registered description for code.
func DescriptionFor(code string) (string, bool) {
	desc, ok := registryMap[code]
	return desc, ok
}

// IsValidCode reports whether code is registered.
func IsValidCode(code string) bool {
	_, ok := registryMap[code]
	return ok
}

package errx

// CreateByCode builds an Error for code/description, wrapping cause when non-nil.
func CreateByCode(code, description, message string, cause error) *Error {
	if cause == nil {
		return New(code, description, message)
	}
	return Wrap(code, description, message, cause)
}

// FromSentinel builds an Error whose category is looked up from sentinel and
// whose base is sentinel, so errors.Is(result, sentinel) holds.
// Unknown sentinels fall back to the CLI category.
func FromSentinel(sentinel error, lookup func(error) (code, description string), message string, cause error) *Error {
	code, desc := lookup(sentinel)
	if code == "" {
		code, desc = CodeCLI, DescCLI
	}
	return CreateByCode(code, desc, message, cause).WithBase(sentinel)
}

// Validation creates an input validation error (70000).
func Validation(message string) *Error {
	return New(CodeCLI, DescCLI, message)
}

// Command creates a command execution error (73000).
func Command(message string) *Error {
	return New(CodeCommand, DescCommand, message)
}

// WrapCommand wraps cause with a command execution error.
func WrapCommand(message string, cause error) *Error {
	return Wrap(CodeCommand, DescCommand, message, cause)
}

// Pipeline creates a pipeline orchestration error (74000).
func Pipeline(message string) *Error {
	return New(CodePipeline, DescPipeline, message)
}

// WrapPipeline wraps cause with a pipeline orchestration error.
func WrapPipeline(message string, cause error) *Error {
	return Wrap(CodePipeline, DescPipeline, message, cause)
}

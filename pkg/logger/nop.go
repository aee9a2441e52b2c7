package logger

// NopLogger discards everything
type NopLogger struct{}

// NewNopLogger returns a logger that drops all entries
func NewNopLogger() Logger {
	return NopLogger{}
}

func (NopLogger) Debug(string, map[string]interface{}) {}
func (NopLogger) Info(string, map[string]interface{})  {}
func (NopLogger) Warn(string, map[string]interface{})  {}
func (NopLogger) Error(string, map[string]interface{}) {}
func (NopLogger) SetLevel(string)                      {}
func (n NopLogger) With(map[string]interface{}) Logger { return n }

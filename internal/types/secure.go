package types

const redacted = "***REDACTED***"

var redactedJSON = []byte(`"***REDACTED***"`)

// SecretString holds a sensitive value (API key, connection string) and
// redacts itself under fmt and JSON serialization so secrets cannot leak
// through log lines or config dumps. Call Unmask to get the raw value at
// the point it is actually consumed.
type SecretString string

// String satisfies fmt.Stringer with the redacted placeholder.
func (s SecretString) String() string {
	return redacted
}

// MarshalJSON emits the redacted placeholder instead of the value.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return redactedJSON, nil
}

// Unmask returns the raw secret. Limit calls to the sites that hand the
// value to a driver or HTTP client.
func (s SecretString) Unmask() string {
	return string(s)
}

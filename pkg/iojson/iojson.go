// Package iojson writes command output as JSON from a CLI perspective.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Error is the standard error envelope written when a command fails.
type Error struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// WriteWith marshals obj as indented JSON to w. Marshal failures are
// reported to ew; they indicate a bug in the caller.
func WriteWith(w io.Writer, ew io.Writer, obj any) error {
	bits, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		fmt.Fprintf(ew, `{"message":"error marshaling output","data":{"json_error":%q}}`+"\n", err.Error())
		return err
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}

// Write calls WriteWith with [os.Stdout] and [os.Stderr].
func Write(obj any) error {
	return WriteWith(os.Stdout, os.Stderr, obj)
}

// WriteLine writes obj as a single compact JSON line to w.
func WriteLine(w io.Writer, obj any) error {
	bits, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("marshal line: %w", err)
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}

// WriteError writes an Error envelope to stderr.
func WriteError(msg string, data map[string]any) error {
	return WriteWith(os.Stderr, os.Stderr, Error{Message: msg, Data: data})
}

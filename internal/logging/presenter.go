// Copyright (c) 2025 SQL Agent
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	stderrors "errors"

	apperrors "sqlagent/cli/internal/errors"
)

// PresentError formats err for the user with secrets masked. Typed errors are
// shown by message and cause, without the machine-readable kind.
func PresentError(action string, err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	var e *apperrors.E
	if stderrors.As(err, &e) {
		msg = e.Message
		if e.Err != nil {
			msg += ": " + e.Err.Error()
		}
	}
	msg = Mask(msg)
	if action == "" {
		return msg
	}
	return action + ": " + msg
}

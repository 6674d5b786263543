package logger

import (
	"useradmin/apperrors"
)

// LogAppError logs an error at the given level, expanding AppError context
// into structured fields.
func (l *Logger) LogAppError(err error, level Level) {
	if appErr := apperrors.FromError(err); appErr != nil && apperrors.IsAppError(err) {
		l.WithFields(appErr.LogFields()).log(level, "%s", appErr.Message)
		return
	}
	l.WithError(err).log(level, "Unstructured error occurred")
}

// LogAppError logs through the default logger
func LogAppError(err error, level Level) {
	defaultLogger.LogAppError(err, level)
}

// LogAppErrorWithContext logs an AppError with additional context
func LogAppErrorWithContext(err error, level Level, additionalContext map[string]interface{}) {
	var fields map[string]interface{}
	msg := "Unstructured error occurred"

	if apperrors.IsAppError(err) {
		appErr := apperrors.FromError(err)
		fields = appErr.LogFields()
		msg = appErr.Message
		for k, v := range additionalContext {
			fields["extra_"+k] = v
		}
	} else {
		fields = map[string]interface{}{"error": err}
		for k, v := range additionalContext {
			fields[k] = v
		}
	}

	defaultLogger.WithFields(fields).log(level, "%s", msg)
}

package errors

import "fmt"

// Wrap prefixes err with msg and keeps it matchable with errors.Is.
// A nil err stays nil, so the call can sit directly in a return:
//
//	return errors.Wrap(err, "failed to load config")
//
// Sentinels survive the wrap:
//
//	if errors.Is(err, errors.ErrProcessFailed) {
//	    // a docker or git command exited non-zero
//	}
//
// Wrap once per package boundary; deeper nesting makes messages hard to read.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf is Wrap with a formatted message:
//
//	return errors.Wrapf(err, "group %s", group)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

package recovery

import "errors"

// ErrRecoveryFailure is returned for a wrong or ill-formed recovery phrase
// and for a corrupted or unsupported recovery record. The caller may
// re-prompt; the error never says which of the two it was beyond the
// structural detail of the record.
var ErrRecoveryFailure = errors.New("recovery failed")

// ErrInvalidWordCount is returned by [GeneratePassphraseSuggestion] for a
// word count outside [MinSuggestionWords]..[MaxSuggestionWords].
var ErrInvalidWordCount = errors.New("invalid passphrase word count")

package service

import "errors"

var (
	ErrNotUnlocked         = errors.New("journal is locked")
	ErrUnlockFailure       = errors.New("unlock failed: wrong secret")
	ErrSessionBusy         = errors.New("session is not locked")
	ErrNoProfile           = errors.New("journal is not enrolled")
	ErrProfileExists       = errors.New("journal is already enrolled")
	ErrRecoveryNotEnrolled = errors.New("no recovery phrase was enrolled")
	ErrBundleIntegrity     = errors.New("backup bundle failed integrity check")

	ErrVersionIsNotSpecified = errors.New("app version is not specified")
)

// MsgUnrecoverableWithoutRecovery is shown when the secret is lost and no
// recovery phrase was enrolled. This is the expected outcome of skipping
// recovery, not a failure the application can fix.
const MsgUnrecoverableWithoutRecovery = "No recovery phrase was set up for this journal. " +
	"Without the original passphrase its entries cannot be decrypted by anyone, " +
	"including this application. This loss is permanent."

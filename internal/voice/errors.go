package voice

import "errors"

var (
	// ErrDependencyMissing means audio I/O or the transcription backend is
	// unavailable at start time.
	ErrDependencyMissing = errors.New("required capability missing")

	// ErrDeviceNotFound means no input-capable device resolved.
	ErrDeviceNotFound = errors.New("no input device found")

	// ErrStreamOpen means no candidate sample rate could open a trial
	// stream, typically a microphone-permission problem.
	ErrStreamOpen = errors.New("could not open microphone stream at 16k/48k/44.1k; check mic permissions in OS settings")

	// ErrModelLoad means the transcription backend failed to initialize.
	ErrModelLoad = errors.New("transcription backend failed to load")
)

package model

import "errors"

// Sentinel error kinds for this package. These allow errors.Is from callers.
var (
	ErrLoadArtifact    = errors.New("load model artifact failed")
	ErrInvalidArtifact = errors.New("invalid model artifact")
	ErrVectorSize      = errors.New("feature vector size mismatch")
	ErrInference       = errors.New("model inference failed")
)

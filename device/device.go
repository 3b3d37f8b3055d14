// Package device holds what the block device implementations share.
// Each subpackage provides a cache.BlockDevice.
package device

import (
	"errors"
	"fmt"
)

var (
	// ErrShortBlock means the transfer buffer is not exactly one block.
	ErrShortBlock = errors.New("device: buffer is not one block")
	// ErrOutOfRange means the block number is past the end of the device.
	ErrOutOfRange = errors.New("device: block out of range")
	// ErrNoDevice means no backing store is attached for the device number.
	ErrNoDevice = errors.New("device: no such device")
)

// CheckBuffer verifies p is exactly one block of blockSize bytes.
func CheckBuffer(p []byte, blockSize int) error {
	if len(p) != blockSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrShortBlock, len(p), blockSize)
	}
	return nil
}

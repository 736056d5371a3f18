package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// SimpleSpinner is a blocking-free line spinner for CLI steps that run
// outside a bubbletea program.
type SimpleSpinner struct {
	out      io.Writer
	spinner  spinner.Spinner
	interval time.Duration

	mu      sync.Mutex
	message string

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func newSpinner(message string, s spinner.Spinner) *SimpleSpinner {
	return &SimpleSpinner{
		out:      os.Stdout,
		spinner:  s,
		interval: s.FPS,
		message:  message,
		done:     make(chan struct{}),
	}
}

// NewConnectionSpinner is used while dialing the relay (Globe style).
func NewConnectionSpinner(message string) *SimpleSpinner {
	return newSpinner(message, spinner.Globe)
}

// NewWaitingSpinner is used while waiting on peers (Points style).
func NewWaitingSpinner(message string) *SimpleSpinner {
	return newSpinner(message, spinner.Points)
}

func (s *SimpleSpinner) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		frames := s.spinner.Frames
		for i := 0; ; i++ {
			s.mu.Lock()
			msg := s.message
			s.mu.Unlock()
			fmt.Fprintf(s.out, "\r%s %s", SpinnerStyle.Render(frames[i%len(frames)]), msg)

			select {
			case <-s.done:
				return
			case <-ticker.C:
			}
		}
	}()
}

func (s *SimpleSpinner) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
		fmt.Fprint(s.out, "\r\033[K") // Clear the line
	})
}

func (s *SimpleSpinner) Success(message string) {
	s.Stop()
	fmt.Fprintf(s.out, "%s %s\n", SuccessStyle.Render(IconSuccess), message)
}

func (s *SimpleSpinner) Error(message string) {
	s.Stop()
	fmt.Fprintf(s.out, "%s %s\n", ErrorStyle.Render(IconError), message)
}

func (s *SimpleSpinner) UpdateMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

package upload

import (
	"fmt"
	"sync"
)

// Image is an attachment tracked by an ImageSet, with an optional cleanup
// callback that runs exactly once when the image leaves the set.
type Image struct {
	Attachment
	IsPrimary bool

	release  func()
	released bool
}

// ImageSet holds a bounded collection of images for a single submission.
// Exactly one image is primary whenever the set is non-empty.
type ImageSet struct {
	mu     sync.Mutex
	max    int
	images []*Image
}

func NewImageSet(max int) *ImageSet {
	return &ImageSet{max: max}
}

// Add appends a validated attachment. The first image becomes primary.
// release may be nil; when set it runs once, on removal or Clear.
func (s *ImageSet) Add(att *Attachment, release func()) (*Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.images) >= s.max {
		return nil, fmt.Errorf("%w: limit is %d", ErrTooManyFiles, s.max)
	}

	img := &Image{Attachment: *att, release: release}
	if len(s.images) == 0 {
		img.IsPrimary = true
	}
	s.images = append(s.images, img)
	return img, nil
}

// SetPrimary marks the image at index as primary and clears the flag on the
// rest.
func (s *ImageSet) SetPrimary(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.images) {
		return fmt.Errorf("image index %d out of range", index)
	}
	for i, img := range s.images {
		img.IsPrimary = i == index
	}
	return nil
}

// Remove drops the image at index and releases it. When the primary image is
// removed, the first remaining image becomes primary.
func (s *ImageSet) Remove(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.images) {
		return fmt.Errorf("image index %d out of range", index)
	}

	img := s.images[index]
	wasPrimary := img.IsPrimary
	s.images = append(s.images[:index], s.images[index+1:]...)
	releaseOnce(img)

	if wasPrimary && len(s.images) > 0 {
		s.images[0].IsPrimary = true
	}
	return nil
}

// Clear releases every image and empties the set. Safe to call more than
// once; each image is released at most once.
func (s *ImageSet) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, img := range s.images {
		releaseOnce(img)
	}
	s.images = nil
}

// Images returns a snapshot of the set in insertion order.
func (s *ImageSet) Images() []*Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Image(nil), s.images...)
}

// Len reports the number of images currently in the set.
func (s *ImageSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.images)
}

// Primary returns the primary image, or nil when the set is empty.
func (s *ImageSet) Primary() *Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, img := range s.images {
		if img.IsPrimary {
			return img
		}
	}
	return nil
}

func releaseOnce(img *Image) {
	if img.released {
		return
	}
	img.released = true
	if img.release != nil {
		img.release()
	}
}

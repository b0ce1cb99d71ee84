/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package corpus

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"sync"

	"github.com/chainguard-dev/clog"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

var (
	filePattern   = regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`)
	folderPattern = regexp.MustCompile(`/folders/([a-zA-Z0-9_-]+)`)
	queryPattern  = regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`)
	bareIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// ExtractID pulls the file or folder ID out of a Google Drive URL.
// Bare IDs pass through unchanged.
func ExtractID(urlOrID string) (string, error) {
	for _, re := range []*regexp.Regexp{filePattern, folderPattern, queryPattern} {
		if m := re.FindStringSubmatch(urlOrID); m != nil {
			return m[1], nil
		}
	}
	if bareIDPattern.MatchString(urlOrID) {
		return urlOrID, nil
	}
	return "", fmt.Errorf("cannot extract a Drive ID from %q", urlOrID)
}

// DriveStore reads a category's corpus from Google Drive using a service
// account credential.
type DriveStore struct {
	service  *drive.Service
	category string
	metadata string
	folders  map[ImageKind]string

	mu    sync.Mutex
	pairs []Pair // populated on first Pairs call
}

// NewDriveStore creates a store for one category. The credentials file is
// a service-account JSON key, passed through to the Drive client opaquely.
func NewDriveStore(ctx context.Context, credentialsFile, category string, cfg CategoryConfig) (*DriveStore, error) {
	service, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("creating Drive service: %w", err)
	}

	metadata, err := ExtractID(cfg.Metadata)
	if err != nil {
		return nil, fmt.Errorf("metadata reference: %w", err)
	}
	hypoFolder, err := ExtractID(cfg.HypothesisFolder)
	if err != nil {
		return nil, fmt.Errorf("hypothesis folder reference: %w", err)
	}
	advFolder, err := ExtractID(cfg.AdversarialFolder)
	if err != nil {
		return nil, fmt.Errorf("adversarial folder reference: %w", err)
	}

	return &DriveStore{
		service:  service,
		category: category,
		metadata: metadata,
		folders: map[ImageKind]string{
			Hypothesis:  hypoFolder,
			Adversarial: advFolder,
		},
	}, nil
}

// Pairs implements Store. The metadata file is downloaded once and cached.
func (s *DriveStore) Pairs(ctx context.Context) ([]Pair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pairs != nil {
		return s.pairs, nil
	}

	content, err := s.download(ctx, s.metadata)
	if err != nil {
		return nil, fmt.Errorf("downloading corpus metadata: %w", err)
	}
	pairs, err := decodePairs(ctx, bytes.NewReader(content), s.category)
	if err != nil {
		return nil, err
	}
	clog.FromContext(ctx).With("category", s.category).With("pairs", len(pairs)).Info("Loaded corpus from Drive")
	s.pairs = pairs
	return pairs, nil
}

// Image implements Store.
func (s *DriveStore) Image(ctx context.Context, kind ImageKind, filename string) ([]byte, error) {
	folder, ok := s.folders[kind]
	if !ok {
		return nil, fmt.Errorf("unsupported image kind: %q", kind)
	}

	id, err := s.findInFolder(ctx, folder, filename)
	if err != nil {
		return nil, err
	}
	content, err := s.download(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("downloading image %q: %w", filename, err)
	}
	return content, nil
}

// findInFolder looks up a file ID by name within a folder.
func (s *DriveStore) findInFolder(ctx context.Context, folderID, filename string) (string, error) {
	query := fmt.Sprintf("'%s' in parents and name = '%s' and trashed = false", folderID, filename)
	resp, err := s.service.Files.List().
		Q(query).
		Fields("files(id, name)").
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		PageSize(1).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("listing folder %q: %w", folderID, err)
	}
	if len(resp.Files) == 0 {
		return "", fmt.Errorf("%w: %q in folder %q", ErrImageNotFound, filename, folderID)
	}
	return resp.Files[0].Id, nil
}

// download fetches a file's content by ID.
func (s *DriveStore) download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := s.service.Files.Get(fileID).
		SupportsAllDrives(true).
		Context(ctx).Download()
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

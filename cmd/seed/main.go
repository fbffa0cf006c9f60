// Package main loads the legacy posts and photos JSON exports into the document store.
//
// A collection that already holds documents is left untouched, so running the
// tool twice does not duplicate content.
//
// Usage:
//
//	DATA_PATH=~/reychango go run ./cmd/seed -posts data/posts.json -photos data/photos.json
//	go run ./cmd/seed -html                       # Convert HTML post bodies to markdown
//	go run ./cmd/seed -hash-password 'secreto'    # Print an ADMIN_PASSWORD_HASH value
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/reychango/reychango-server/internal/auth"
	"github.com/reychango/reychango-server/internal/docstore"
	"github.com/reychango/reychango-server/internal/domain"
	"github.com/reychango/reychango-server/internal/logger"
	"github.com/reychango/reychango-server/internal/store"
	"github.com/reychango/reychango-server/internal/util"
)

var (
	dataPath     = flag.String("data-path", "", "Base path for persisted data (default: $DATA_PATH or ~/reychango)")
	postsFile    = flag.String("posts", filepath.Join("data", "posts.json"), "Posts export")
	photosFile   = flag.String("photos", filepath.Join("data", "photos.json"), "Photos export")
	convertHTML  = flag.Bool("html", false, "Convert HTML post bodies to markdown")
	hashPassword = flag.String("hash-password", "", "Print the argon2id hash of a password and exit")
	verbose      = flag.Bool("v", false, "Debug logging")
)

func main() {
	flag.Parse()

	if *hashPassword != "" {
		hash, err := auth.HashPassword(*hashPassword)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to hash password: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := logger.New(logger.Config{Level: level})

	base := *dataPath
	if base == "" {
		base = os.Getenv("DATA_PATH")
	}
	if base == "" {
		base = os.ExpandEnv("$HOME/reychango")
	}
	dbPath := filepath.Join(base, "db")

	log.Info("Opening document store", "path", dbPath)
	db, err := docstore.Open(docstore.Options{Path: dbPath, SyncWrites: true, Logger: log.Component("docstore")})
	if err != nil {
		log.Fatal("Failed to open document store", "error", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close document store", "error", err)
		}
	}()

	ctx := context.Background()
	s, err := store.New(ctx, db, log.Component("store"))
	if err != nil {
		log.Error("Failed to open store", "error", err)
		return
	}

	if err := seedPosts(ctx, s, log, *postsFile, *convertHTML); err != nil {
		log.Error("Post migration failed", "error", err)
	}
	if err := seedPhotos(ctx, s, log, *photosFile); err != nil {
		log.Error("Photo migration failed", "error", err)
	}

	log.Info("Migration finished")
}

func seedPosts(ctx context.Context, s *store.Store, log *logger.Logger, path string, convert bool) error {
	var posts []*domain.Post
	if err := readJSON(path, &posts); err != nil {
		return err
	}
	if len(posts) == 0 {
		log.Info("No posts to migrate", "file", path)
		return nil
	}

	empty, err := s.CollectionEmpty(ctx, store.CollectionPosts)
	if err != nil {
		return err
	}
	if !empty {
		log.Info("Posts already present, skipping")
		return nil
	}

	migrated := 0
	for _, post := range posts {
		post.ID = ""
		if post.Slug == "" {
			post.Slug = util.Slugify(post.Title)
		}
		if convert {
			md, err := util.HTMLToMarkdown(post.Content)
			if err != nil {
				log.Warn("Keeping HTML body", "slug", post.Slug, "error", err)
			} else {
				post.Content = md
			}
		}

		if _, err := s.SavePost(ctx, post); err != nil {
			log.Error("Failed to migrate post", "title", post.Title, "error", err)
			continue
		}
		migrated++
	}

	log.Info("Posts migrated", "migrated", migrated, "total", len(posts))
	return nil
}

func seedPhotos(ctx context.Context, s *store.Store, log *logger.Logger, path string) error {
	var photos []*domain.Photo
	if err := readJSON(path, &photos); err != nil {
		return err
	}
	if len(photos) == 0 {
		log.Info("No photos to migrate", "file", path)
		return nil
	}

	empty, err := s.CollectionEmpty(ctx, store.CollectionPhotos)
	if err != nil {
		return err
	}
	if !empty {
		log.Info("Photos already present, skipping")
		return nil
	}

	migrated := 0
	for _, photo := range photos {
		photo.ID = ""
		if _, err := s.SavePhoto(ctx, photo); err != nil {
			log.Error("Failed to migrate photo", "title", photo.Title, "error", err)
			continue
		}
		migrated++
	}

	log.Info("Photos migrated", "migrated", migrated, "total", len(photos))
	return nil
}

// readJSON decodes the export at path into v. A missing file decodes as nothing.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

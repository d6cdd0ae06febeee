package procedures

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"procedure-backend/internal/extract"
	"procedure-backend/internal/queue"
	"procedure-backend/internal/quality"
	"procedure-backend/internal/shared/auth"
	"procedure-backend/internal/shared/metrics"
	"procedure-backend/internal/shared/storage/object"
	"procedure-backend/internal/shared/telemetry"
)

// Analyzer is the quality engine as seen by the upload workflow.
type Analyzer interface {
	Analyze(ctx context.Context, doc quality.Document) quality.Result
}

type Options struct {
	MinScore       int
	MaxUploadBytes int64
	// CacheSize bounds the analysis cache; 0 disables it.
	CacheSize int
}

// Service runs the upload workflow: analyze, gate on the minimum score, store, publish.
type Service struct {
	repo     Repo
	store    object.ObjectStore
	analyzer Analyzer
	events   queue.Client
	opts     Options
	cache    *lru.Cache[string, quality.Result]
	now      func() time.Time
}

// NewService wires the workflow. events may be nil to disable publishing.
func NewService(repo Repo, store object.ObjectStore, analyzer Analyzer, events queue.Client, opts Options) (*Service, error) {
	if repo == nil || store == nil || analyzer == nil {
		return nil, errors.New("procedures: repo, store and analyzer are required")
	}
	if opts.MinScore < 0 || opts.MinScore > 100 {
		return nil, fmt.Errorf("procedures: minimum score %d out of range", opts.MinScore)
	}
	s := &Service{
		repo:     repo,
		store:    store,
		analyzer: analyzer,
		events:   events,
		opts:     opts,
		now:      func() time.Time { return time.Now().UTC() },
	}
	if opts.CacheSize > 0 {
		cache, err := lru.New[string, quality.Result](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("procedures: analysis cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

func (s *Service) MinScore() int { return s.opts.MinScore }

// Viewer is the authenticated caller.
type Viewer struct {
	ID   string
	Role string
}

func (v Viewer) canSee(p Procedure) bool {
	return auth.IsPrivileged(v.Role) || p.OwnerID == v.ID
}

type SubmitInput struct {
	Owner      Viewer
	Title      string
	Department string
	FileName   string
	MimeType   string
	Data       []byte
	RequestID  string
}

// Submit analyzes the upload and records it. Below the minimum score the record
// is stored as rejected, without its file, and a *RejectedError is returned.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (Procedure, error) {
	in.FileName = strings.TrimSpace(in.FileName)
	if strings.TrimSpace(in.Owner.ID) == "" || in.FileName == "" {
		return Procedure{}, fmt.Errorf("%w: owner and file name are required", ErrInvalidInput)
	}
	if len(in.Data) == 0 {
		return Procedure{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	if err := s.checkSize(in.Data); err != nil {
		return Procedure{}, err
	}

	sum := sha256.Sum256(in.Data)
	res := s.analyze(ctx, sum, quality.Document{Data: in.Data, MimeType: in.MimeType, FileName: in.FileName})
	if res.Failure == quality.FailureCanceled {
		if err := ctx.Err(); err != nil {
			return Procedure{}, err
		}
	}

	p := Procedure{
		ID:            uuid.NewString(),
		Title:         titleFor(in.Title, in.FileName),
		Department:    departmentFor(in.Department, res),
		OwnerID:       in.Owner.ID,
		FileName:      in.FileName,
		MimeType:      extract.NormalizeMimeType(in.MimeType, in.Data),
		SizeBytes:     int64(len(in.Data)),
		ContentSHA256: hex.EncodeToString(sum[:]),
		Score:         res.Score,
		Analysis:      res,
		CreatedAt:     s.now(),
	}

	if !res.Accepted(s.opts.MinScore) {
		p.Status = StatusRejected
		if err := s.repo.Create(ctx, p); err != nil {
			return Procedure{}, err
		}
		metrics.IncProceduresRejected()
		s.publish(ctx, queue.EventRejected, p, in.RequestID)
		return p, &RejectedError{Procedure: p, MinScore: s.opts.MinScore}
	}

	key, err := object.ProcedureKey(p.OwnerID, p.ID, p.FileName)
	if err != nil {
		return Procedure{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.store.Put(ctx, key, p.MimeType, bytes.NewReader(in.Data), p.SizeBytes); err != nil {
		return Procedure{}, fmt.Errorf("store procedure file: %w", err)
	}
	p.StorageProvider = s.store.Provider()
	p.StorageKey = key
	p.Status = StatusAccepted

	if err := s.repo.Create(ctx, p); err != nil {
		telemetry.Error("procedure.persist.failed", map[string]any{
			"procedure_id": p.ID,
			"storage_key":  key,
			"error":        err.Error(),
		})
		return Procedure{}, err
	}
	metrics.IncProceduresAccepted()
	s.publish(ctx, queue.EventAccepted, p, in.RequestID)
	return p, nil
}

type PreviewInput struct {
	FileName string
	MimeType string
	Data     []byte
}

// Preview analyzes a document without recording anything.
func (s *Service) Preview(ctx context.Context, in PreviewInput) (quality.Result, error) {
	if len(in.Data) == 0 {
		return quality.Result{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	if err := s.checkSize(in.Data); err != nil {
		return quality.Result{}, err
	}
	sum := sha256.Sum256(in.Data)
	res := s.analyze(ctx, sum, quality.Document{Data: in.Data, MimeType: in.MimeType, FileName: in.FileName})
	if res.Failure == quality.FailureCanceled {
		if err := ctx.Err(); err != nil {
			return quality.Result{}, err
		}
	}
	return res, nil
}

// Get returns a procedure the viewer may see. Other owners' records look missing.
func (s *Service) Get(ctx context.Context, viewer Viewer, id string) (Procedure, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Procedure{}, err
	}
	if !viewer.canSee(p) {
		return Procedure{}, ErrNotFound
	}
	return p, nil
}

// List returns procedures visible to viewer. Authors only see their own.
func (s *Service) List(ctx context.Context, viewer Viewer, f Filter) ([]Procedure, error) {
	if !auth.IsPrivileged(viewer.Role) {
		f.OwnerID = viewer.ID
	}
	return s.repo.List(ctx, f)
}

// OpenFile streams the stored upload of an accepted procedure.
func (s *Service) OpenFile(ctx context.Context, viewer Viewer, id string) (Procedure, io.ReadCloser, error) {
	p, err := s.Get(ctx, viewer, id)
	if err != nil {
		return Procedure{}, nil, err
	}
	if !p.HasFile() {
		return Procedure{}, nil, ErrNotFound
	}
	rc, err := s.store.Open(ctx, p.StorageKey)
	if errors.Is(err, object.ErrNotFound) {
		return Procedure{}, nil, ErrNotFound
	}
	if err != nil {
		return Procedure{}, nil, fmt.Errorf("open procedure file: %w", err)
	}
	return p, rc, nil
}

func (s *Service) checkSize(data []byte) error {
	if s.opts.MaxUploadBytes > 0 && int64(len(data)) > s.opts.MaxUploadBytes {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, len(data), s.opts.MaxUploadBytes)
	}
	return nil
}

// analyze consults the cache before running the engine. Interrupted analyses
// are never cached.
func (s *Service) analyze(ctx context.Context, sum [sha256.Size]byte, doc quality.Document) quality.Result {
	key := cacheKey(sum, doc)
	if s.cache != nil {
		if res, ok := s.cache.Get(key); ok {
			metrics.IncAnalysisCacheHits()
			return res
		}
	}
	res := s.analyzer.Analyze(ctx, doc)
	if s.cache != nil && res.Failure != quality.FailureCanceled {
		s.cache.Add(key, res)
	}
	return res
}

// cacheKey covers every input the engine reads: the content and the type the
// extractor will resolve it to.
func cacheKey(sum [sha256.Size]byte, doc quality.Document) string {
	return hex.EncodeToString(sum[:]) + "|" + extract.NormalizeMimeType(doc.MimeType, doc.Data)
}

func (s *Service) publish(ctx context.Context, event string, p Procedure, requestID string) {
	if s.events == nil {
		return
	}
	msg := queue.NewMessage(event, s.now())
	msg.ProcedureID = p.ID
	msg.Score = p.Score
	msg.OwnerID = p.OwnerID
	msg.FileName = p.FileName
	msg.Department = p.Department
	msg.RequestID = requestID
	if err := s.events.Send(ctx, msg); err != nil {
		telemetry.Warn("procedure.event.failed", map[string]any{
			"procedure_id": p.ID,
			"event":        event,
			"error":        err.Error(),
		})
	}
}

func titleFor(title, fileName string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	base := filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// departmentFor prefers the submitted department and falls back to the first
// one found in the document.
func departmentFor(submitted string, res quality.Result) string {
	if d := strings.TrimSpace(submitted); d != "" {
		return d
	}
	if len(res.Details.Departments) > 0 {
		return res.Details.Departments[0]
	}
	return ""
}

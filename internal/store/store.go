// Package store is the single source of truth for tasks, projects and
// user preferences. All mutations are synchronous in-memory transitions;
// persistence is a whole-snapshot write per touched blob, handed to a
// background writer so callers never block on disk.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"taskden/internal/model"
	"taskden/internal/recurrence"
)

var (
	ErrNotFound          = errors.New("task not found")
	ErrProjectNotFound   = errors.New("project not found")
	ErrEmptyTitle        = errors.New("task title is required")
	ErrEmptyProjectName  = errors.New("project name is required")
	ErrEmptyTag          = errors.New("tag is required")
	ErrDuplicateTag      = errors.New("tag already exists")
	ErrEmptyCategory     = errors.New("category is required")
	ErrDuplicateCategory = errors.New("category already exists")
)

// TaskService is the operation set shared by the local store and the
// network-backed client; screens program against this, not a concrete
// implementation.
type TaskService interface {
	FetchTasks() ([]model.Task, error)
	AddTask(t model.Task) (model.Task, error)
	UpdateTask(t model.Task) (model.Task, error)
	ToggleTaskStatus(id model.TaskID) (model.Task, error)
	DeleteTask(id model.TaskID) error
}

// Prefs is the user-preference snapshot held alongside the collections.
type Prefs struct {
	DarkMode         bool     `json:"darkMode"`
	CustomTags       []string `json:"customTags"`
	CustomCategories []string `json:"customCategories"`
}

type Store struct {
	mu               sync.Mutex
	tasks            []model.Task
	projects         []model.Project
	darkMode         bool
	customTags       []string
	customCategories []string

	blobs  BlobStore
	logger zerolog.Logger
	clock  func() time.Time

	pmu     sync.Mutex
	wmu     sync.Mutex
	pending map[string][]byte
	kick    chan struct{}
	quit    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	errs    chan error
}

func New(blobs BlobStore, logger zerolog.Logger) *Store {
	s := &Store{
		tasks:            []model.Task{},
		projects:         []model.Project{},
		customTags:       []string{},
		customCategories: []string{},
		blobs:            blobs,
		logger:           logger,
		clock:            time.Now,
		pending:          map[string][]byte{},
		kick:             make(chan struct{}, 1),
		quit:             make(chan struct{}),
		errs:             make(chan error, 16),
	}
	s.wg.Add(1)
	go s.writeLoop()
	return s
}

// Errs surfaces persistence failures. Mutations never report them
// directly: the in-memory transition has already happened by the time the
// write lands (or doesn't).
func (s *Store) Errs() <-chan error {
	return s.errs
}

// Initialize overwrites in-memory state from the persisted blobs. Absent
// blobs leave the matching default in place; malformed blobs are logged
// and skipped rather than failing the load.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadInto(BlobTasks, &s.tasks); err != nil {
		return err
	}
	for i := range s.tasks {
		s.tasks[i].Normalize()
	}
	if err := s.loadInto(BlobProjects, &s.projects); err != nil {
		return err
	}
	if err := s.loadInto(BlobDarkMode, &s.darkMode); err != nil {
		return err
	}
	if err := s.loadInto(BlobCustomTags, &s.customTags); err != nil {
		return err
	}
	if err := s.loadInto(BlobCustomCategories, &s.customCategories); err != nil {
		return err
	}
	if s.tasks == nil {
		s.tasks = []model.Task{}
	}
	if s.projects == nil {
		s.projects = []model.Project{}
	}
	if s.customTags == nil {
		s.customTags = []string{}
	}
	if s.customCategories == nil {
		s.customCategories = []string{}
	}
	return nil
}

func (s *Store) loadInto(key string, out any) error {
	b, found, err := s.blobs.Get(key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if !found {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		s.logger.Warn().Str("blob", key).Err(err).Msg("skipping malformed blob")
	}
	return nil
}

// --- tasks ---

func (s *Store) FetchTasks() ([]model.Task, error) {
	return s.Tasks(), nil
}

func (s *Store) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	return out
}

func (s *Store) Task(id model.TaskID) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tasks {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return model.Task{}, false
}

func (s *Store) AddTask(t model.Task) (model.Task, error) {
	if strings.TrimSpace(t.Title) == "" {
		return model.Task{}, ErrEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = model.NewTaskID()
	t.CreatedAt = s.clock()
	t.Completed = false
	t.Normalize()

	s.tasks = append(s.tasks, t)
	s.persistTasksLocked()
	return t.Clone(), nil
}

// UpdateTask replaces the stored task with the same id.
func (s *Store) UpdateTask(t model.Task) (model.Task, error) {
	if strings.TrimSpace(t.Title) == "" {
		return model.Task{}, ErrEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID != t.ID {
			continue
		}
		t.CreatedAt = s.tasks[i].CreatedAt // immutable after creation
		t.Normalize()
		s.tasks[i] = t
		s.persistTasksLocked()
		return t.Clone(), nil
	}
	return model.Task{}, ErrNotFound
}

// ToggleTaskStatus flips completion. Completing a repeating task also
// appends the next occurrence; both changes land in the same snapshot so
// there is no persisted state with only half the transition.
func (s *Store) ToggleTaskStatus(id model.TaskID) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		cur := &s.tasks[i]
		if !cur.Completed {
			if next, ok := recurrence.NextOccurrence(*cur, s.clock()); ok {
				cur.Completed = true
				s.tasks = append(s.tasks, next)
				s.persistTasksLocked()
				return s.tasks[i].Clone(), nil
			}
		}
		cur.Completed = !cur.Completed
		s.persistTasksLocked()
		return cur.Clone(), nil
	}
	return model.Task{}, ErrNotFound
}

func (s *Store) DeleteTask(id model.TaskID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			s.persistTasksLocked()
			return nil
		}
	}
	return ErrNotFound
}

// DeleteAllTasks clears the whole collection. Irreversible; callers are
// expected to have confirmed with the user.
func (s *Store) DeleteAllTasks() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = []model.Task{}
	s.persistTasksLocked()
}

// --- projects ---

func (s *Store) Projects() []model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Project, len(s.projects))
	copy(out, s.projects)
	return out
}

func (s *Store) AddProject(p model.Project) (model.Project, error) {
	if strings.TrimSpace(p.Name) == "" {
		return model.Project{}, ErrEmptyProjectName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = model.NewProjectID()
	p.CreatedAt = s.clock()
	s.projects = append(s.projects, p)
	s.persistProjectsLocked()
	return p, nil
}

func (s *Store) UpdateProject(p model.Project) (model.Project, error) {
	if strings.TrimSpace(p.Name) == "" {
		return model.Project{}, ErrEmptyProjectName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.projects {
		if s.projects[i].ID != p.ID {
			continue
		}
		p.CreatedAt = s.projects[i].CreatedAt
		s.projects[i] = p
		s.persistProjectsLocked()
		return p, nil
	}
	return model.Project{}, ErrProjectNotFound
}

// DeleteProject removes the project and clears the reference on every
// task that pointed at it. Tasks are never deleted along with a project.
func (s *Store) DeleteProject(id model.ProjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i := range s.projects {
		if s.projects[i].ID == id {
			s.projects = append(s.projects[:i], s.projects[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return ErrProjectNotFound
	}

	for i := range s.tasks {
		if s.tasks[i].ProjectID != nil && *s.tasks[i].ProjectID == id {
			s.tasks[i].ProjectID = nil
		}
	}

	s.persistProjectsLocked()
	s.persistTasksLocked()
	return nil
}

// --- preferences ---

func (s *Store) Prefs() Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Prefs{
		DarkMode:         s.darkMode,
		CustomTags:       append([]string{}, s.customTags...),
		CustomCategories: append([]string{}, s.customCategories...),
	}
}

func (s *Store) ToggleDarkMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.darkMode = !s.darkMode
	s.persistLocked(BlobDarkMode, s.darkMode)
	return s.darkMode
}

func (s *Store) AddCustomTag(tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ErrEmptyTag
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, have := range s.customTags {
		if have == tag {
			return ErrDuplicateTag
		}
	}
	s.customTags = append(s.customTags, tag)
	s.persistLocked(BlobCustomTags, s.customTags)
	return nil
}

// DeleteCustomTag removes the tag from the known list and strips it from
// every task that carries it.
func (s *Store) DeleteCustomTag(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]string, 0, len(s.customTags))
	for _, have := range s.customTags {
		if have != tag {
			next = append(next, have)
		}
	}
	s.customTags = next

	for i := range s.tasks {
		if !s.tasks[i].HasTag(tag) {
			continue
		}
		kept := make([]string, 0, len(s.tasks[i].Tags))
		for _, have := range s.tasks[i].Tags {
			if have != tag {
				kept = append(kept, have)
			}
		}
		s.tasks[i].Tags = kept
	}

	s.persistLocked(BlobCustomTags, s.customTags)
	s.persistTasksLocked()
}

func (s *Store) AddCustomCategory(category string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return ErrEmptyCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, have := range s.customCategories {
		if have == category {
			return ErrDuplicateCategory
		}
	}
	s.customCategories = append(s.customCategories, category)
	s.persistLocked(BlobCustomCategories, s.customCategories)
	return nil
}

// DeleteCustomCategory removes the category and resets it to "" on every
// task that used it.
func (s *Store) DeleteCustomCategory(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]string, 0, len(s.customCategories))
	for _, have := range s.customCategories {
		if have != category {
			next = append(next, have)
		}
	}
	s.customCategories = next

	for i := range s.tasks {
		if s.tasks[i].Category == category {
			s.tasks[i].Category = ""
		}
	}

	s.persistLocked(BlobCustomCategories, s.customCategories)
	s.persistTasksLocked()
}

// --- persistence machinery ---

func (s *Store) persistTasksLocked()    { s.persistLocked(BlobTasks, s.tasks) }
func (s *Store) persistProjectsLocked() { s.persistLocked(BlobProjects, s.projects) }

// persistLocked marshals the snapshot while the state lock is held (so
// the bytes are a consistent view) and queues it for the writer. Only the
// latest snapshot per key is kept: intermediate writes are superseded,
// which is exactly the last-write-wins contract.
func (s *Store) persistLocked(key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.logger.Error().Str("blob", key).Err(err).Msg("marshal snapshot")
		s.reportErr(fmt.Errorf("marshal %s: %w", key, err))
		return
	}

	s.pmu.Lock()
	s.pending[key] = b
	s.pmu.Unlock()

	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *Store) writeLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.kick:
			s.flushPending()
		case <-s.quit:
			s.flushPending()
			return
		}
	}
}

// flushPending drains queued snapshots. wmu serializes drains so Flush
// only returns once in-flight writes have landed.
func (s *Store) flushPending() {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	for {
		s.pmu.Lock()
		if len(s.pending) == 0 {
			s.pmu.Unlock()
			return
		}
		batch := s.pending
		s.pending = map[string][]byte{}
		s.pmu.Unlock()

		for key, data := range batch {
			if err := s.blobs.Put(key, data); err != nil {
				s.logger.Error().Str("blob", key).Err(err).Msg("persist snapshot")
				s.reportErr(fmt.Errorf("persist %s: %w", key, err))
			}
		}
	}
}

func (s *Store) reportErr(err error) {
	select {
	case s.errs <- err:
	default:
		// nobody draining; the log line above is the record
	}
}

// Flush blocks until every queued snapshot has been handed to the blob
// store. Mutation paths never call this; shutdown and tests do.
func (s *Store) Flush() {
	s.flushPending()
}

// Close flushes pending writes, stops the writer and closes the blob
// store.
func (s *Store) Close() error {
	s.once.Do(func() {
		close(s.quit)
		s.wg.Wait()
	})
	return s.blobs.Close()
}

package draft

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/janisto/provider-profile/internal/platform/logging"
	"github.com/janisto/provider-profile/internal/platform/session"
	"github.com/janisto/provider-profile/internal/profile"
	"github.com/janisto/provider-profile/internal/profile/gallery"
	"github.com/janisto/provider-profile/internal/profile/validate"
)

// Controller owns the profile state and performs the remote calls around it.
// State changes are serialized by one mutex; remote calls run without it and
// re-enter through Dispatch. A Controller is safe for concurrent use.
type Controller struct {
	remote   profile.Remote
	session  session.Store
	notifier Notifier
	newID    func() string
	logger   *zap.Logger

	mu      sync.Mutex
	state   State
	closed  bool
	uploads sync.WaitGroup
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier sets the receiver of user-facing notices.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithTowns sets the towns a business may be located in.
func WithTowns(towns []string) Option {
	return func(c *Controller) {
		c.state = NewState(towns)
	}
}

// WithIDGenerator sets the generator of local image IDs.
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// WithLogger sets the controller logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns a Controller in the Viewing phase with no snapshot loaded.
func New(remote profile.Remote, sess session.Store, opts ...Option) *Controller {
	c := &Controller{
		remote:  remote,
		session: sess,
		newID:   uuid.NewString,
		logger:  logging.Logger(),
		state:   NewState(nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.notifier == nil {
		c.notifier = LogNotifier(c.logger)
	}
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Dispatch applies a to the current state.
func (c *Controller) Dispatch(a Action) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dispatchLocked(a)
}

func (c *Controller) dispatchLocked(a Action) error {
	if c.closed {
		return ErrClosed
	}
	from := c.state.Phase
	next, err := Reduce(c.state, a)
	c.state = next
	c.logger.Debug("profile action",
		zap.String("action", fmt.Sprintf("%T", a)),
		zap.Stringer("from", from),
		zap.Stringer("to", next.Phase),
		zap.Error(err),
	)
	return err
}

// Refresh fetches the profile and installs it as the snapshot. While editing,
// the draft is replaced by the fetched profile.
func (c *Controller) Refresh(ctx context.Context) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if c.State().Phase == Submitting {
		return ErrLocked
	}
	if err := c.authorize(); err != nil {
		c.notifyError("", err)
		return err
	}
	snap, err := c.remote.FetchProfile(ctx)
	if err != nil {
		logging.LogError(ctx, "fetch profile", err)
		c.notifyError("", err)
		return err
	}
	return c.Dispatch(Hydrate{Snapshot: snap})
}

// LoadCatalog fetches the predefined service catalog for the pickers.
func (c *Controller) LoadCatalog(ctx context.Context) (*profile.Catalog, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if err := c.authorize(); err != nil {
		c.notifyError("", err)
		return nil, err
	}
	cat, err := c.remote.FetchCatalog(ctx)
	if err != nil {
		logging.LogError(ctx, "fetch catalog", err)
		c.notifyError("", err)
		return nil, err
	}
	if err := c.Dispatch(CatalogLoaded{Catalog: cat}); err != nil {
		return nil, err
	}
	return c.State().Catalog, nil
}

// StartEdit copies the snapshot into a fresh draft.
func (c *Controller) StartEdit() error {
	return c.Dispatch(StartEdit{})
}

// Cancel discards the draft and returns to Viewing.
func (c *Controller) Cancel() error {
	return c.Dispatch(CancelEdit{})
}

// AddPredefinedService adds a catalog service to the draft. A duplicate is
// reported through the notifier and leaves the draft unchanged.
func (c *Controller) AddPredefinedService(svc profile.CatalogService) error {
	err := c.Dispatch(AddPredefinedService{Service: svc})
	if errors.Is(err, profile.ErrConflict) {
		c.notify(Notice{Level: LevelWarning, Message: fmt.Sprintf("%s is already in your services", svc.Name), Err: err})
	}
	return err
}

// RemoveService removes a service from the draft. A persisted service is also
// deleted remotely; if that fails the entry is put back where it was.
func (c *Controller) RemoveService(ctx context.Context, index int, isCustom bool) error {
	c.mu.Lock()
	var entry profile.ServiceEntry
	if d := c.state.Draft; d != nil {
		subset := d.Services.Predefined
		if isCustom {
			subset = d.Services.Custom
		}
		if index >= 0 && index < len(subset) {
			entry = subset[index]
		}
	}
	err := c.dispatchLocked(RemoveService{Index: index, IsCustom: isCustom})
	c.mu.Unlock()
	if err != nil || entry.ID == "" {
		return err
	}

	err = c.authorize()
	if err == nil {
		err = c.remote.DeleteService(ctx, entry.ID)
	}
	if err == nil {
		return nil
	}
	logging.LogWarn(ctx, "delete service failed", zap.String("serviceId", entry.ID), zap.Error(err))
	if rerr := c.Dispatch(RestoreService{Index: index, IsCustom: isCustom, Entry: entry}); rerr != nil {
		logging.LogWarn(ctx, "restore service skipped", zap.Error(rerr))
	}
	c.notifyError("Could not remove service", err)
	return err
}

// AddImage adds a local placeholder and uploads the image in the background.
// It returns the placeholder's local ID. Use Wait to block until uploads
// settle.
func (c *Controller) AddImage(ctx context.Context, img profile.ImageUpload) (string, error) {
	if err := c.authorize(); err != nil {
		c.notifyError("", err)
		return "", err
	}
	id := c.newID()
	if err := c.Dispatch(UploadImageStart{LocalID: id, URI: img.URI}); err != nil {
		return "", err
	}
	// Teardown must not cancel the upload; its completion is dropped instead.
	ctx = context.WithoutCancel(ctx)
	c.uploads.Add(1)
	go func() {
		defer c.uploads.Done()
		c.upload(ctx, id, img)
	}()
	return id, nil
}

func (c *Controller) upload(ctx context.Context, id string, img profile.ImageUpload) {
	path, err := c.remote.AddImage(ctx, img)
	if err != nil {
		logging.LogWarn(ctx, "image upload failed", zap.String("localId", id), zap.Error(err))
		if derr := c.Dispatch(UploadImageFail{LocalID: id}); errors.Is(derr, ErrClosed) {
			return
		}
		c.notifyError("Image upload failed", err)
		return
	}
	err = c.Dispatch(UploadImageSuccess{LocalID: id, Path: path})
	if !errors.Is(err, ErrStaleUpload) {
		return
	}
	// The placeholder was deleted or replaced while uploading.
	path = gallery.NormalizePath(path)
	if derr := c.remote.DeleteImage(ctx, path); derr != nil {
		logging.LogWarn(ctx, "orphaned image not deleted", zap.String("path", path), zap.Error(derr))
	}
}

// DeleteImage removes an image from the draft. Remote images are deleted on
// submit.
func (c *Controller) DeleteImage(index int) error {
	return c.Dispatch(DeleteImage{Index: index})
}

// Submit validates the draft and saves it. On success the profile is
// re-fetched and the controller returns to Viewing; on failure it returns to
// Editing with the draft intact.
func (c *Controller) Submit(ctx context.Context) error {
	if err := c.Dispatch(BeginSubmit{}); err != nil {
		return err
	}
	snap, err := c.submit(ctx)
	if errors.Is(err, ErrClosed) {
		return err
	}
	if err != nil {
		var fields profile.Errors
		msg := ""
		if errors.Is(err, ErrPasswordRejected) {
			fields = profile.Errors{validate.FieldOldPassword: msgWrongPassword}
			msg = msgWrongPassword
		}
		if aerr := c.Dispatch(AbortSubmit{Errors: fields}); aerr != nil {
			return aerr
		}
		logging.LogError(ctx, "profile submit failed", err)
		c.notifyError(msg, err)
		return err
	}
	if err := c.Dispatch(FinishSubmit{Snapshot: snap}); err != nil {
		return err
	}
	c.notify(Notice{Level: LevelInfo, Message: "Profile updated"})
	return nil
}

func (c *Controller) submit(ctx context.Context) (*profile.Snapshot, error) {
	if err := c.authorize(); err != nil {
		return nil, err
	}
	st := c.State()
	if st.Draft.ShowPassword {
		email := st.Draft.Identity.Email
		if st.Snapshot != nil && st.Snapshot.Identity.Email != "" {
			email = st.Snapshot.Identity.Email
		}
		if err := c.remote.VerifyPassword(ctx, email, st.Draft.Password.OldPassword); err != nil {
			if errors.Is(err, profile.ErrUnauthenticated) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %w", ErrPasswordRejected, err)
		}
	}

	if err := c.reconcileDeletions(ctx, st.Draft.Gallery.PendingDeletes); err != nil {
		return nil, err
	}

	st = c.State()
	updated, err := c.remote.UpdateProfile(ctx, buildUpdate(st.Draft))
	if err != nil {
		return nil, err
	}
	if err := c.Dispatch(ClearPassword{}); err != nil {
		return nil, err
	}

	fresh, err := c.remote.FetchProfile(ctx)
	if err != nil {
		logging.LogWarn(ctx, "re-fetch after update failed, using update response", zap.Error(err))
		fresh = updated
	}
	return fresh, nil
}

// reconcileDeletions deletes every queued image. A failed delete puts the
// image back and is reported, but does not abort the submission.
func (c *Controller) reconcileDeletions(ctx context.Context, pending []gallery.Deletion) error {
	for i := len(pending) - 1; i >= 0; i-- {
		d := pending[i]
		if err := c.remote.DeleteImage(ctx, d.Image.Path); err != nil {
			logging.LogWarn(ctx, "image delete failed", zap.String("path", d.Image.Path), zap.Error(err))
			if rerr := c.Dispatch(RestoreImage{Deletion: d}); rerr != nil {
				return rerr
			}
			c.notifyError("Could not delete image", err)
			continue
		}
		if err := c.Dispatch(ConfirmImageDeletion{Path: d.Image.Path}); err != nil {
			return err
		}
	}
	return nil
}

// Wait blocks until all in-flight uploads have completed.
func (c *Controller) Wait() {
	c.uploads.Wait()
}

// Close tears the controller down. Completions arriving afterwards are
// dropped and no further notices are raised.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *Controller) checkOpen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return nil
}

func (c *Controller) authorize() error {
	if c.session == nil || c.session.Get() == "" {
		return profile.ErrUnauthenticated
	}
	return nil
}

func (c *Controller) notify(n Notice) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}
	c.notifier.Notify(n)
}

// notifyError raises an error notice. prefix, when set, replaces the message
// for everything but authentication failures. An authentication failure also
// drops the session token so later calls fail without a request.
func (c *Controller) notifyError(prefix string, err error) {
	if errors.Is(err, profile.ErrUnauthenticated) && c.session != nil {
		c.session.Clear()
	}
	msg := profile.UserMessage(err)
	if prefix != "" && !errors.Is(err, profile.ErrUnauthenticated) {
		msg = prefix
		if detail := profile.UserMessage(err); detail != profile.GenericRemoteMessage {
			msg = fmt.Sprintf("%s: %s", prefix, detail)
		}
	}
	c.notify(Notice{Level: LevelError, Message: msg, Err: err})
}

// Scheduling, per-service opt-out label handling, and sqlite
// persistence, grounded on update_checker.rs's check_all/check_stack/
// start_background_checker.
package imagecheck

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"gopkg.in/yaml.v3"

	"github.com/cfilipov/dockge/internal/apperr"
	"github.com/cfilipov/dockge/internal/compose"
	"github.com/cfilipov/dockge/internal/logging"
	"github.com/cfilipov/dockge/internal/settings"
)

const (
	defaultCheckIntervalHours = 6
	initialDelay              = 5 * time.Minute
	concurrencyLimit          = 3
)

var log = logging.Component("imagecheck")

// ServiceUpdateInfo is the per-stack update state broadcast alongside
// the stack list: whether any service has an update, keyed per
// service.
type ServiceUpdateInfo struct {
	HasUpdates bool
	Services   map[string]bool
}

// Checker owns the in-memory cache mirroring the image_update_cache
// table, and the scheduling loop that keeps it fresh.
type Checker struct {
	db        *sql.DB
	settings  *settings.Store
	stacksDir string

	mu    sync.RWMutex
	cache map[string]*ServiceUpdateInfo

	// OnCycleDone is invoked after every check cycle (manual or
	// scheduled) so the caller can re-broadcast the stack list —
	// spec.md §9(b) resolves the open question of when to broadcast by
	// requiring it after EVERY cycle, not only when something changed.
	OnCycleDone func()
}

func New(db *sql.DB, settingsStore *settings.Store, stacksDir string) *Checker {
	return &Checker{
		db:        db,
		settings:  settingsStore,
		stacksDir: stacksDir,
		cache:     make(map[string]*ServiceUpdateInfo),
	}
}

func (c *Checker) Get(stackName string) (*ServiceUpdateInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.cache[stackName]
	return info, ok
}

// LoadCacheFromDB repopulates the in-memory cache from
// image_update_cache, matching load_cache_from_db.
func (c *Checker) LoadCacheFromDB() error {
	rows, err := c.db.Query(`SELECT stack_name, service_name, has_update FROM image_update_cache`)
	if err != nil {
		return apperr.Wrap(apperr.Db, err)
	}
	defer rows.Close()

	next := make(map[string]*ServiceUpdateInfo)
	for rows.Next() {
		var stackName, serviceName string
		var hasUpdate bool
		if err := rows.Scan(&stackName, &serviceName, &hasUpdate); err != nil {
			return apperr.Wrap(apperr.Db, err)
		}
		entry, ok := next[stackName]
		if !ok {
			entry = &ServiceUpdateInfo{Services: map[string]bool{}}
			next[stackName] = entry
		}
		entry.Services[serviceName] = hasUpdate
		if hasUpdate {
			entry.HasUpdates = true
		}
	}

	c.mu.Lock()
	c.cache = next
	c.mu.Unlock()
	log.Info("loaded cached image update entries", "count", len(next))
	return rows.Err()
}

type serviceTarget struct {
	stackName    string
	serviceName  string
	image        string
	ignoreDigest string
}

func serviceTargetsForStack(s *compose.Stack) []serviceTarget {
	if !s.IsManagedByDockge() || s.ComposeYAML == "" {
		return nil
	}
	var doc struct {
		Services map[string]struct {
			Image  string            `yaml:"image"`
			Labels map[string]string `yaml:"labels"`
		} `yaml:"services"`
	}
	if err := yaml.Unmarshal([]byte(s.ComposeYAML), &doc); err != nil {
		return nil
	}

	var targets []serviceTarget
	for name, svc := range doc.Services {
		if svc.Image == "" {
			continue
		}
		if svc.Labels["dockge.imageupdates.check"] == "false" {
			continue
		}
		targets = append(targets, serviceTarget{
			stackName:    s.Name,
			serviceName:  name,
			image:        svc.Image,
			ignoreDigest: svc.Labels["dockge.imageupdates.ignore"],
		})
	}
	return targets
}

// CheckAll runs a full check cycle for every managed stack, respecting
// the imageUpdateCheckEnabled setting.
func (c *Checker) CheckAll(ctx context.Context) {
	if !c.settings.GetBool("imageUpdateCheckEnabled", true) {
		log.Debug("image update check is disabled")
		return
	}
	log.Info("starting image update check for all stacks")

	stacks, err := compose.GetStackList(ctx, c.stacksDir)
	if err != nil {
		log.Error("failed to get stack list", "error", err)
		return
	}

	var targets []serviceTarget
	for _, s := range stacks {
		targets = append(targets, serviceTargetsForStack(s)...)
	}
	c.runTargets(ctx, targets)

	if c.OnCycleDone != nil {
		c.OnCycleDone()
	}
}

// CheckStack runs a check cycle scoped to one stack.
func (c *Checker) CheckStack(ctx context.Context, stackName string) {
	log.Info("checking stack", "stack", stackName)
	s, err := compose.GetStack(ctx, c.stacksDir, stackName)
	if err != nil {
		return
	}
	c.runTargets(ctx, serviceTargetsForStack(s))
	if c.OnCycleDone != nil {
		c.OnCycleDone()
	}
}

func (c *Checker) runTargets(ctx context.Context, targets []serviceTarget) {
	sem := semaphore.NewWeighted(concurrencyLimit)
	var wg sync.WaitGroup
	for _, t := range targets {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(t serviceTarget) {
			defer wg.Done()
			defer sem.Release(1)
			c.checkSingleImage(ctx, t)
		}(t)
	}
	wg.Wait()

	if err := c.LoadCacheFromDB(); err != nil {
		log.Error("failed to reload image update cache", "error", err)
	}
	log.Info("check complete", "count", len(targets))
}

func (c *Checker) checkSingleImage(ctx context.Context, t serviceTarget) {
	parsed := ParseImageReference(t.image)

	var remoteDigest, localDigest string
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); remoteDigest = FetchRemoteDigest(ctx, parsed) }()
	go func() { defer wg.Done(); localDigest = FetchLocalDigest(ctx, t.image) }()
	wg.Wait()

	hasUpdate := false
	if remoteDigest != "" && localDigest != "" {
		hasUpdate = !strings.EqualFold(remoteDigest, localDigest)
		if hasUpdate && t.ignoreDigest != "" && strings.EqualFold(remoteDigest, t.ignoreDigest) {
			hasUpdate = false
		}
	}

	now := time.Now().Unix()
	_, err := c.db.Exec(`
		INSERT INTO image_update_cache (stack_name, service_name, image_reference, local_digest, remote_digest, has_update, last_checked)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(stack_name, service_name) DO UPDATE SET
			image_reference = excluded.image_reference,
			local_digest = excluded.local_digest,
			remote_digest = excluded.remote_digest,
			has_update = excluded.has_update,
			last_checked = excluded.last_checked
	`, t.stackName, t.serviceName, t.image, nullableString(localDigest), nullableString(remoteDigest), hasUpdate, now)
	if err != nil {
		log.Error("failed to upsert image update cache", "stack", t.stackName, "service", t.serviceName, "error", err)
	}
	log.Debug("checked image", "stack", t.stackName, "service", t.serviceName, "image", t.image, "hasUpdate", hasUpdate)
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// StartBackgroundChecker loads the cache, waits the initial delay, and
// then loops CheckAll followed by a sleep of
// imageUpdateCheckInterval hours (default 6, minimum 1), until ctx is
// cancelled.
func (c *Checker) StartBackgroundChecker(ctx context.Context) {
	if err := c.LoadCacheFromDB(); err != nil {
		log.Error("failed to load image update cache", "error", err)
	}

	select {
	case <-time.After(initialDelay):
	case <-ctx.Done():
		return
	}

	for {
		c.CheckAll(ctx)

		hours := c.settings.GetUint64("imageUpdateCheckInterval", defaultCheckIntervalHours)
		if hours < 1 {
			hours = 1
		}

		select {
		case <-time.After(time.Duration(hours) * time.Hour):
		case <-ctx.Done():
			return
		}
	}
}

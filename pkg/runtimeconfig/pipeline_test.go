package runtimeconfig

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigilmon/vigil/pkg/atomicfile"
	"github.com/vigilmon/vigil/pkg/confpkg"
	"github.com/vigilmon/vigil/pkg/depgraph"
	"github.com/vigilmon/vigil/pkg/events"
	"github.com/vigilmon/vigil/pkg/objects"
	"github.com/vigilmon/vigil/pkg/storage"
	"github.com/vigilmon/vigil/pkg/types"
)

// recordingNotifier captures authority notifications for assertions
type recordingNotifier struct {
	mu      sync.Mutex
	origins []*events.Origin
}

func (n *recordingNotifier) UpdateObjectAuthority(origin *events.Origin) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.origins = append(n.origins, origin)
}

func (n *recordingNotifier) calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.origins)
}

type pipelineEnv struct {
	manager  *Manager
	broker   *events.Broker
	index    storage.Store
	notifier *recordingNotifier
}

func newPipeline(t *testing.T) *pipelineEnv {
	t.Helper()

	broker := events.NewBroker()
	broker.Start()
	t.Cleanup(broker.Stop)

	index, err := storage.NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	notifier := &recordingNotifier{}

	pkgs := confpkg.NewStore(t.TempDir(), broker)
	pkgs.SetIndex(index)

	manager := NewManager(&Config{
		Packages: pkgs,
		Types:    types.DefaultRegistry(),
		Objects:  objects.NewRegistry(broker),
		Graph:    depgraph.New(),
		Index:    index,
		Notifier: notifier,
	})

	return &pipelineEnv{manager: manager, broker: broker, index: index, notifier: notifier}
}

func (e *pipelineEnv) lookup(t *testing.T, name string) *types.Type {
	t.Helper()

	typ, ok := e.manager.Types().Lookup(name)
	require.True(t, ok, "type %s not registered", name)
	return typ
}

func (e *pipelineEnv) createHost(t *testing.T, name string) {
	t.Helper()

	var diag Diagnostics
	err := e.manager.CreateObject(e.lookup(t, "Host"), name, false, nil, types.Attributes{
		"address": "10.0.0.7",
	}, &diag, nil)
	require.NoError(t, err, "diag: %v", diag.Errors)
}

func (e *pipelineEnv) createService(t *testing.T, fullName string) {
	t.Helper()

	var diag Diagnostics
	err := e.manager.CreateObject(e.lookup(t, "Service"), fullName, false, nil, types.Attributes{
		"check_command": "http",
	}, &diag, nil)
	require.NoError(t, err, "diag: %v", diag.Errors)
}

func TestCreateObject(t *testing.T) {
	env := newPipeline(t)

	var diag Diagnostics
	err := env.manager.CreateObject(env.lookup(t, "Host"), "web01", false, []string{}, types.Attributes{
		"address":       "10.0.0.7",
		"check_command": "hostalive",
	}, &diag, nil)
	require.NoError(t, err)
	assert.Empty(t, diag.Errors)

	obj := env.manager.Objects().Get("Host", "web01")
	require.NotNil(t, obj)
	assert.True(t, obj.Active())
	assert.Equal(t, confpkg.APIPackage, obj.Package())
	assert.Greater(t, obj.Version(), 0.0)

	// The config file must be durable and readable back.
	data, err := os.ReadFile(obj.SourcePath())
	require.NoError(t, err)
	assert.Contains(t, string(data), `object Host "web01" {`)
	assert.Contains(t, string(data), "\taddress = \"10.0.0.7\"\n")

	// And indexed, along with the bootstrapped package.
	rec, err := env.index.GetObject("Host", "web01")
	require.NoError(t, err)
	assert.Equal(t, obj.SourcePath(), rec.Path)
	assert.Equal(t, obj.Version(), rec.Version)

	pkgRecs, err := env.index.ListPackages()
	require.NoError(t, err)
	require.Len(t, pkgRecs, 1)
	assert.Equal(t, confpkg.APIPackage, pkgRecs[0].Name)
	assert.Equal(t, env.manager.Packages().GetActiveStage(confpkg.APIPackage), pkgRecs[0].ActiveStage)
}

func TestCreateObjectArrayOfDicts(t *testing.T) {
	env := newPipeline(t)

	vars := []any{
		map[string]any{"disk": "/", "warn": 80.0},
		map[string]any{"disk": "/var", "warn": 90.0},
	}

	var diag Diagnostics
	err := env.manager.CreateObject(env.lookup(t, "Host"), "web01", false, nil, types.Attributes{
		"address": "10.0.0.7",
		"vars":    vars,
	}, &diag, nil)
	require.NoError(t, err, "diag: %v", diag.Errors)

	obj := env.manager.Objects().Get("Host", "web01")
	require.NotNil(t, obj)
	assert.Equal(t, vars, obj.Attrs()["vars"])

	_, statErr := os.Stat(obj.SourcePath())
	assert.NoError(t, statErr)
}

func TestCreateObjectInvalidAttrLeavesNothing(t *testing.T) {
	env := newPipeline(t)

	var diag Diagnostics
	err := env.manager.CreateObject(env.lookup(t, "Host"), "web01", false, nil, types.Attributes{
		"bogus": 1,
	}, &diag, nil)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, diag.Errors, 1)

	assert.Nil(t, env.manager.Objects().Get("Host", "web01"))

	path, err := env.manager.ComputeNewObjectConfigPath(env.lookup(t, "Host"), "web01")
	require.NoError(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "config file exists after failed create")
}

func TestCreateObjectAlreadyExists(t *testing.T) {
	env := newPipeline(t)
	env.createHost(t, "web01")

	var diag Diagnostics
	err := env.manager.CreateObject(env.lookup(t, "Host"), "web01", false, nil, nil, &diag, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	require.Len(t, diag.Errors, 1)
}

func TestCreateObjectConcurrentSingleWinner(t *testing.T) {
	env := newPipeline(t)
	hostType := env.lookup(t, "Host")

	const workers = 8
	successes := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			var diag Diagnostics
			err := env.manager.CreateObject(hostType, "web01", false, nil, types.Attributes{
				"address": "10.0.0.7",
			}, &diag, nil)
			if err == nil {
				successes <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(successes)

	var won int
	for range successes {
		won++
	}
	assert.Equal(t, 1, won, "exactly one concurrent create must win")

	obj := env.manager.Objects().Get("Host", "web01")
	require.NotNil(t, obj)

	// The losers' temp files must all be cleaned up and only the winner's
	// file persisted.
	dir := filepath.Dir(obj.SourcePath())
	leftovers, err := atomicfile.TmpDirEntries(dir)
	require.NoError(t, err)
	assert.Empty(t, leftovers)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCreateServiceRequiresHost(t *testing.T) {
	env := newPipeline(t)

	var diag Diagnostics
	err := env.manager.CreateObject(env.lookup(t, "Service"), "web01!http", false, nil, types.Attributes{
		"check_command": "http",
	}, &diag, nil)

	var cerr *CommitError
	require.ErrorAs(t, err, &cerr)
	assert.NotEmpty(t, diag.Errors)

	assert.Nil(t, env.manager.Objects().Get("Service", "web01!http"))

	path, err := env.manager.ComputeNewObjectConfigPath(env.lookup(t, "Service"), "web01!http")
	require.NoError(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "config file exists after failed commit")
}

func TestCreateObjectIgnoreOnError(t *testing.T) {
	env := newPipeline(t)

	// The referenced host doesn't exist; with ignore_on_error the item is
	// skipped silently and the call reports success without an object.
	var diag Diagnostics
	err := env.manager.CreateObject(env.lookup(t, "Service"), "web01!http", true, nil, types.Attributes{
		"check_command": "http",
	}, &diag, nil)
	require.NoError(t, err)
	assert.Empty(t, diag.Errors)

	assert.Nil(t, env.manager.Objects().Get("Service", "web01!http"))

	path, err := env.manager.ComputeNewObjectConfigPath(env.lookup(t, "Service"), "web01!http")
	require.NoError(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "config file persisted for ignored object")
}

func TestCreateObjectOriginNotEchoed(t *testing.T) {
	env := newPipeline(t)
	origin := events.NewOrigin()

	// A subscriber on the originating side must not see its own change; an
	// unrelated subscriber must.
	self := env.broker.SubscribeFrom(origin)
	other := env.broker.Subscribe()

	var diag Diagnostics
	err := env.manager.CreateObject(env.lookup(t, "Host"), "web01", false, nil, types.Attributes{
		"address": "10.0.0.7",
	}, &diag, origin)
	require.NoError(t, err)

	select {
	case ev := <-other:
		assert.Equal(t, events.EventObjectCreated, ev.Type)
		assert.Equal(t, "web01", ev.ObjectName)
	case <-time.After(time.Second):
		t.Fatal("unrelated subscriber did not receive the creation event")
	}

	select {
	case ev := <-self:
		t.Fatalf("creation event echoed back to its origin: %v", ev.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCreateObjectAuthorityNotification(t *testing.T) {
	env := newPipeline(t)

	env.createHost(t, "web01")
	assert.Equal(t, 1, env.notifier.calls())

	env.createService(t, "web01!http")
	assert.Equal(t, 2, env.notifier.calls())

	// Comments churn too much for authority rebalancing.
	var diag Diagnostics
	err := env.manager.CreateObject(env.lookup(t, "Comment"), "web01!http!c1", false, nil, types.Attributes{
		"author": "ops",
		"text":   "ack",
	}, &diag, nil)
	require.NoError(t, err, "diag: %v", diag.Errors)
	assert.Equal(t, 2, env.notifier.calls())
}

func TestCreateObjectRepairErrorSkipsDiagnostics(t *testing.T) {
	env := newPipeline(t)

	// An API package directory that exists but holds no stage cannot be
	// repaired.
	require.NoError(t, env.manager.Packages().CreatePackage(confpkg.APIPackage))

	var diag Diagnostics
	err := env.manager.CreateObject(env.lookup(t, "Host"), "web01", false, nil, nil, &diag, nil)

	var repairErr *confpkg.RepairError
	require.ErrorAs(t, err, &repairErr)
	assert.Empty(t, diag.Errors, "repair failures must not be folded into diagnostics")
}

func TestDeleteObject(t *testing.T) {
	env := newPipeline(t)
	env.createHost(t, "web01")

	obj := env.manager.Objects().Get("Host", "web01")
	require.NotNil(t, obj)
	path := obj.SourcePath()

	var diag Diagnostics
	require.NoError(t, env.manager.DeleteObject(obj, false, &diag, nil))
	assert.Empty(t, diag.Errors)

	assert.Nil(t, env.manager.Objects().Get("Host", "web01"))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "config file survived delete")

	_, err := env.index.GetObject("Host", "web01")
	assert.Error(t, err, "index record survived delete")

	deleted, ok := obj.Extension(objects.ExtensionDeleted)
	require.True(t, ok)
	assert.Equal(t, true, deleted)
}

func TestDeleteObjectOutsideAPIPackage(t *testing.T) {
	env := newPipeline(t)

	obj := objects.New(env.lookup(t, "Host"), "static01", "conf", "", nil)

	var diag Diagnostics
	err := env.manager.DeleteObject(obj, false, &diag, nil)

	var perr *PolicyError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Reason, "not created using the API")
	assert.Len(t, diag.Errors, 1)
}

func TestDeleteObjectWithDependentsNeedsCascade(t *testing.T) {
	env := newPipeline(t)
	env.createHost(t, "web01")
	env.createService(t, "web01!http")

	host := env.manager.Objects().Get("Host", "web01")
	require.NotNil(t, host)

	var diag Diagnostics
	err := env.manager.DeleteObject(host, false, &diag, nil)

	var perr *PolicyError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Reason, "Use cascading delete")

	// Nothing was touched.
	require.NotNil(t, env.manager.Objects().Get("Host", "web01"))
	require.NotNil(t, env.manager.Objects().Get("Service", "web01!http"))
	_, statErr := os.Stat(host.SourcePath())
	assert.NoError(t, statErr)
}

func TestDeleteObjectCascade(t *testing.T) {
	env := newPipeline(t)
	env.createHost(t, "web01")
	env.createService(t, "web01!http")

	host := env.manager.Objects().Get("Host", "web01")
	service := env.manager.Objects().Get("Service", "web01!http")
	require.NotNil(t, host)
	require.NotNil(t, service)

	var diag Diagnostics
	require.NoError(t, env.manager.DeleteObject(host, true, &diag, nil))
	assert.Empty(t, diag.Errors)

	assert.Nil(t, env.manager.Objects().Get("Host", "web01"))
	assert.Nil(t, env.manager.Objects().Get("Service", "web01!http"))

	for _, path := range []string{host.SourcePath(), service.SourcePath()} {
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr), "config file %s survived cascade", path)
	}
}

func TestRecreateAfterDelete(t *testing.T) {
	env := newPipeline(t)
	env.createHost(t, "web01")

	obj := env.manager.Objects().Get("Host", "web01")
	require.NotNil(t, obj)

	var diag Diagnostics
	require.NoError(t, env.manager.DeleteObject(obj, false, &diag, nil))

	// The name is free again.
	env.createHost(t, "web01")
	again := env.manager.Objects().Get("Host", "web01")
	require.NotNil(t, again)
	assert.Greater(t, again.Version(), obj.Version())
}

func TestCreateCommentUsesHashedPath(t *testing.T) {
	env := newPipeline(t)
	env.createHost(t, "web01")
	env.createService(t, "web01!http")

	fullName := "web01!http!" + strings.Repeat("x", 300)

	var diag Diagnostics
	err := env.manager.CreateObject(env.lookup(t, "Comment"), fullName, false, nil, types.Attributes{
		"author": "ops",
		"text":   "ack",
	}, &diag, nil)
	require.NoError(t, err, "diag: %v", diag.Errors)

	obj := env.manager.Objects().Get("Comment", fullName)
	require.NotNil(t, obj)

	base := filepath.Base(obj.SourcePath())
	assert.Len(t, base, hashedNameLen+len(".conf"))

	_, statErr := os.Stat(obj.SourcePath())
	assert.NoError(t, statErr)
}

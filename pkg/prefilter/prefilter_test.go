package prefilter

import (
	"sync"
	"testing"

	"github.com/praetorian-inc/scanutil/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() []*types.Signature {
	return []*types.Signature{
		{ID: "js.evil_script", Pattern: "<script>evil_script()</script>", Extension: ".js", Category: types.CategoryJS},
		{ID: "unix.rm_documents", Pattern: "rm -rf ~/Documents", Category: types.CategoryUnix},
		{ID: "macos.launchagent", Pattern: `system("launchctl load /Library/LaunchAgents/com.malware.agent")`, Category: types.CategoryMacOS},
	}
}

func TestPrefilter_MayMatch(t *testing.T) {
	pf := New(testCatalog())
	assert.Equal(t, 3, pf.Len())

	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"empty", "", false},
		{"clean", "console.log('hello')", false},
		{"partial pattern", "rm -rf ~/Doc", false},
		{"unix payload", "#!/bin/sh\nrm -rf ~/Documents\n", true},
		{"js payload in any file", "<script>evil_script()</script>", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pf.MayMatch([]byte(tt.content)))
		})
	}
}

func TestPrefilter_Filter(t *testing.T) {
	pf := New(testCatalog())

	filtered := pf.Filter([]byte(`system("launchctl load /Library/LaunchAgents/com.malware.agent"); rm -rf ~/Documents`))
	require.Len(t, filtered, 2)
	// Catalog order, not position in content.
	assert.Equal(t, "unix.rm_documents", filtered[0].ID)
	assert.Equal(t, "macos.launchagent", filtered[1].ID)

	assert.Empty(t, pf.Filter([]byte("nothing here")))
}

func TestPrefilter_SharedPattern(t *testing.T) {
	catalog := []*types.Signature{
		{ID: "a", Pattern: "payload", Extension: ".sh"},
		{ID: "b", Pattern: "other"},
		{ID: "c", Pattern: "payload"},
	}
	pf := New(catalog)
	assert.Equal(t, 2, pf.Len())

	filtered := pf.Filter([]byte("xx payload xx"))
	require.Len(t, filtered, 2)
	assert.Equal(t, "a", filtered[0].ID)
	assert.Equal(t, "c", filtered[1].ID)
}

func TestPrefilter_EmptyCatalog(t *testing.T) {
	pf := New(nil)
	assert.Equal(t, 0, pf.Len())
	assert.False(t, pf.MayMatch([]byte("anything")))
	assert.Nil(t, pf.Filter([]byte("anything")))
}

func TestPrefilter_ConcurrentFilter(t *testing.T) {
	pf := New(testCatalog())
	content := []byte("#!/bin/sh\nrm -rf ~/Documents\n")

	const workers = 16
	const iterations = 2000

	misses := make(chan int, workers)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			missed := 0
			for range iterations {
				got := pf.Filter(content)
				if len(got) != 1 || got[0].ID != "unix.rm_documents" {
					missed++
				}
				if !pf.MayMatch(content) {
					missed++
				}
			}
			misses <- missed
		}()
	}
	wg.Wait()
	close(misses)

	total := 0
	for m := range misses {
		total += m
	}
	assert.Zero(t, total, "every concurrent call must see the pattern")
}

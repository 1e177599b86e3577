package appfs

import "testing"

// The template partials start with "_", which a plain directory pattern in a
// go:embed directive would silently skip.
func TestFS_embedsTemplatePartials(t *testing.T) {
	files := []string{
		"templates/email/_base.txt",
		"templates/email/feedback.txt",
		"migrations/00001_create_core_tables.sql",
	}
	for _, fp := range files {
		if _, err := FS.ReadFile(fp); err != nil {
			t.Errorf("FS.ReadFile(%q) failed! err %v", fp, err)
		}
	}
}

package eventlog

import (
	"os"
	"path/filepath"
	"testing"
)

const e1Log = `[1262962252] Nagios 3.2.0 starting... (PID=7873)
[1262991600] CURRENT SERVICE STATE: n0_test_host_000;n0_test_random_04;OK;HARD;1;msg
[1263736735] Nagios 3.2.0 starting... (PID=528)
[1263744146] Caught SIGTERM, shutting down...
[1263744148] Nagios 3.2.0 starting... (PID=21311)
[1263769200] CURRENT SERVICE STATE: n0_test_host_000;n0_test_random_04;OK;HARD;1;msg
`

func TestIngestStringE1Log(t *testing.T) {
	recs := IngestString(e1Log)
	if len(recs) != 6 {
		t.Fatalf("got %d records, want 6", len(recs))
	}
	if recs[0].Time != 1262962252 || !recs[0].HasProcStart {
		t.Fatalf("first record: got %+v", recs[0])
	}
}

func TestIngestFileFallsBackOnInvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.log")
	// 0xE9 alone is invalid UTF-8 but valid ISO-8859-1 ('é').
	line := []byte("[1262962252] CURRENT SERVICE STATE: h;s;OK;HARD;1;caf\xe9\n")
	if err := os.WriteFile(path, line, 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	recs, err := IngestFile(path)
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if recs[0].PluginOutput == "" {
		t.Fatalf("expected a decoded plugin_output")
	}
}

func TestIngestDirOnlyMatchesLogSuffix(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.log"), e1Log)
	writeFile(t, filepath.Join(dir, "ignored.txt"), e1Log)

	recs, err := IngestDir(dir)
	if err != nil {
		t.Fatalf("IngestDir: %v", err)
	}
	if len(recs) != 6 {
		t.Fatalf("got %d records, want 6 (only a.log should be read)", len(recs))
	}
}

func TestExtractStructuredWithOptions(t *testing.T) {
	row := StructuredRow{
		Time:    1263042133,
		Type:    "EXTERNAL COMMAND",
		Options: "DISABLE_HOST_NOTIFICATIONS;myhost",
	}
	r := ExtractStructured(row)
	if r == nil || r.HostName != "myhost" {
		t.Fatalf("got %+v", r)
	}
}

func TestExtractStructuredWithMessage(t *testing.T) {
	row := StructuredRow{
		Time:    1263042133,
		Type:    "HOST DOWNTIME ALERT",
		Message: "myhost;STARTED;comment",
	}
	r := ExtractStructured(row)
	if r == nil || !r.DowntimeStart {
		t.Fatalf("got %+v", r)
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

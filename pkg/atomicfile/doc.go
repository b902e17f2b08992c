/*
Package atomicfile writes files that become visible all at once or not at
all.

New creates a uniquely named temp file next to the final path; Commit syncs
it and renames it over the final path. Close before Commit discards the temp
file, so the zero-effort failure path of a caller is a plain defer:

	f, err := atomicfile.New(path, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteString(data); err != nil {
		return err
	}
	return f.Commit()

Because every writer gets its own temp file, concurrent writers racing on the
same final path never observe each other's partial writes; the last rename
wins. Readers of the final path see either the previous complete content or
the new complete content, never a torn file.
*/
package atomicfile

// Package source finds the JPEG files a run should process and loads them.
//
// Discovery is deterministic: folder entries are visited in lexical order,
// so two runs over the same tree process files in the same sequence and
// produce identically ordered logs and summaries.
//
// Only JPEG input is supported. Files are recognised by extension during
// discovery and by their leading signature bytes when loaded.
package source

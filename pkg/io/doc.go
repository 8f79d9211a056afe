// Package io reads and writes family data as JSON or YAML.
//
// # Format
//
// Both encodings carry the same document:
//
//	{
//	  "members": {
//	    "mem_0": {"id": "mem_0", "name": "Ali Yılmaz", "gen": 1, "gender": "E", ...},
//	    "mem_1": {"id": "mem_1", "name": "Fatma", "is_spouse": true, ...}
//	  },
//	  "links": [["mem_0", "u_mem_0_mem_1"], ["mem_1", "u_mem_0_mem_1"]],
//	  "start": "mem_0"
//	}
//
// Links are [source, target] pairs. Every link joins a member and a union;
// [ReadData] rejects documents that break this, that link unknown members,
// or whose start member does not exist.
//
// # Import and export
//
// Use [ReadData] and [WriteData] with an explicit [Format], or
// [ImportData] and [ExportData], which pick the format from the file
// extension (".yaml" and ".yml" mean YAML, anything else JSON).
//
// The exported document is what `familytree parse` prints and what the
// pipeline caches, so a parsed sheet can be re-rendered without fetching it
// again.
package io

/*
Package uax31 classifies Unicode codepoints for identifier parsing.

It implements the "Default Identifiers" specification of Unicode Standard
Annex #31 (rule UAX31-R1-1): a codepoint classifier answering "may this
codepoint start an identifier?" and "may it continue one?", plus identifier
validation built on top of the classifier.

A classifier is compiled once from Unicode property data (the XID_Start and
XID_Continue derived properties) into a frozen two-level run-length trie:
codepoint blocks map through a deduplicated two-level index to deduplicated
per-block run tables. Compilation is offline and single-threaded; the
compiled table is immutable and lookups are safe for unbounded concurrent
use without synchronization.

Property data parsing is intentionally outside the base package. Use the
adapter in package ucd to parse the Unicode DerivedCoreProperties.txt
format and feed this API, or generate an embeddable table with the
uax31gen command.

Further Reading

	https://www.unicode.org/reports/tr31/
	https://www.unicode.org/reports/tr44/   (UCD file formats)

----------------------------------------------------------------------

# BSD License

Copyright (c) Norbert Pillmayer <norbert@pillmayer@com>

All rights reserved.

License information is available in the LICENSE file.
*/
package uax31

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'uax31'
func tracer() tracing.Trace {
	return tracing.Select("uax31")
}

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}

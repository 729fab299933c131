package mcpserver

// LibraryFormatContract describes the canonical SPICE library file format
// that LLM consumers should follow when adding library files.
const LibraryFormatContract = `# Spicerack Library Format Contract

Every library file stored in Spicerack MUST follow this structure.

## Structure

` + "```" + `spice
* PRODUCT_NAME: Acme W6 woofer      metadata comments directly above the block
* MANUFACTURER: Acme
* PART_NUMBER: AW-6
* FS: 42.5
* QTS: 0.38
.SUBCKT aw6_woofer 1 2
R1 1 3 6.4
L1 3 2 0.55m
.ENDS

.MODEL fastdiode D(IS=2.52e-9 RS=0.568 N=1.752)
` + "```" + `

## Rules

1. **File extensions** are .lib, .cir, .sub, or .mod. Other files are ignored
   by the indexer.
2. **Metadata lines** are full-line comments of the form ` + "`" + `* KEY: VALUE` + "`" + ` placed
   immediately above a .SUBCKT or .MODEL statement. A blank line breaks the
   run, so keep the metadata block contiguous with the definition.
3. **Keys** are uppercased on parse; write them uppercase with underscores
   (PRODUCT_NAME, PART_NUMBER, MANUFACTURER, TYPE).
4. **Unit suffixes** on metadata values are stripped: ` + "`" + `QTS: 0.38` + "`" + ` and
   ` + "`" + `RE: 6.4 ohms` + "`" + ` both index cleanly.
5. **Thiele/Small keys** (FS, QTS, QES, QMS, VAS, RE, LE, BL, XMAX, MMS,
   CMS, SD) additionally parse as numbers when the value is numeric; they
   become searchable driver parameters.
6. **Continuation lines** start with ` + "`" + `+` + "`" + ` and join the previous statement.
7. **Names are first come, first served.** If a model or subcircuit name is
   already indexed from an earlier file, a later definition is ignored. Pick
   unique names.
8. **Subcircuit bodies** are plain element lines (R, L, C, X, ...) between
   .SUBCKT and .ENDS. Nested .SUBCKT is not supported; a new header closes
   the open block.

## Example

` + "```" + `spice
* PRODUCT_NAME: Acme T25 tweeter
* TYPE: tweeter
* RE: 4.7 ohms
.SUBCKT t25_tweeter in out
R1 in 2 4.7
L1 2 out 0.05m
.ENDS
` + "```" + `
`

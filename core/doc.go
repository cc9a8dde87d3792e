// Package core reads PDF file syntax: objects, indirect definitions,
// cross-reference data and object streams.
//
// Everything works on a document held in memory. [Lexer] produces tokens,
// [Parser] builds [Object] values from them, [ParseXRef] walks the chain of
// cross-reference tables and streams from the last startxref, and
// [ObjectStream] unpacks compressed objects.
//
//	table, err := core.ParseXRef(data)
//	entry, _ := table.Get(12)
//	obj, err := core.NewParser(data[entry.Offset:]).ParseIndirectObject()
//
// [Stream.Decode] runs a stream's /Filter chain through the filters
// package. [Stream.DecodeImage] stops at an image codec filter so the
// encoded JPEG or JPEG 2000 payload can be kept as is.
package core

// Package reader opens PDF documents, resolves their objects and lists and
// fetches the image XObjects of each page.
//
//	r, err := reader.Open("document.pdf")
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	pages, err := r.Pages()
//	for _, page := range pages {
//	    refs, err := r.PageImageRefs(page)
//	    for _, ref := range refs {
//	        raw, err := r.RawImage(ref)
//	        // raw.Data, raw.Ext()
//	    }
//	}
//
// The document is read into memory once; [NewReader] and [NewReaderBytes]
// accept documents that are not files. Files whose cross-reference data is
// damaged are recovered by scanning for object headers, and
// [Reader.Rebuilt] reports when that happened.
//
// [Reader.PageImageRefs] lists images in natural name order, including
// those drawn through Form XObjects. JPEG, JPEG 2000 and JBIG2 data is
// returned as stored. Images held as raw samples are converted to PNG;
// gray, RGB, CMYK, Indexed and ICCBased color spaces are supported at 1, 2,
// 4, 8 and 16 bits per component.
package reader

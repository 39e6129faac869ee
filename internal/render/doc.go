// Package render loads JavaScript-driven pages in headless Chrome and reads
// text cells out of the rendered DOM.
//
// A Browser owns one Chrome process. Every Open call gets its own tab, so
// concurrent callers never share page state; closing the Page closes the tab.
package render

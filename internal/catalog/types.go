// Package catalog looks up book metadata in a public library catalog's OpenSearch API.
package catalog

import "encoding/xml"

// Candidate is a catalog record offered to prefill the book form.
type Candidate struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	Publisher     string `json:"publisher"`
	PublishedYear *int   `json:"published_year,omitempty"`
}

// rssFeed is the OpenSearch RSS response.
type rssFeed struct {
	XMLName xml.Name  `xml:"rss"`
	Items   []rssItem `xml:"channel>item"`
}

// rssItem is one catalog record. Only the Dublin Core fields are read.
type rssItem struct {
	Categories []string `xml:"category"`
	Title      string   `xml:"http://purl.org/dc/elements/1.1/ title"`
	Creators   []string `xml:"http://purl.org/dc/elements/1.1/ creator"`
	Publisher  string   `xml:"http://purl.org/dc/elements/1.1/ publisher"`
	Issued     string   `xml:"http://purl.org/dc/terms/ issued"`
}

// Command secbrief pulls security vendor research articles into a document
// store, chunks and embeds them into a vector index, and serves a
// retrieval-augmented question answering API over the result.
package main

func main() {
	Execute()
}

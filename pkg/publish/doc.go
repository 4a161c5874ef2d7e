// Package publish writes static renders to their destination.
//
// A Publisher stores one named document. S3Publisher uploads to an S3 (or
// S3-compatible) bucket; FilePublisher writes below a local directory.
//
//	client := publish.NewS3Client(publish.S3Options{Region: "us-east-1"})
//	p := publish.NewS3Publisher(client, "my-bucket", "renders/")
//	loc, err := p.Publish(ctx, "index.html", []byte(page))
package publish

// Package artifact loads the build output a renderer is constructed from:
// the HTML template, the server bundle and the client manifest.
//
// Artifacts are read through a [Source], so the same loader works against a
// local directory ([Dir]), an in-memory or embedded file system ([FS]) and an
// S3 bucket ([NewS3]):
//
//	set, err := artifact.Load(ctx, artifact.Dir("./dist"), artifact.TemplateFile("./index.html"))
//	if artifact.IsError(err) {
//	    // missing or malformed build output
//	}
package artifact

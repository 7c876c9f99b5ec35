// Package github talks to GitHub Releases on behalf of spm.
//
// # Overview
//
// Three kinds of requests are made:
//
//   - tag resolution against the REST API (https://api.github.com):
//     [Client.LatestTag] reads /releases/latest, [Client.LatestPrereleaseTag]
//     reads the first entry of /releases?per_page=1
//   - release manifest download from the release assets
//     (https://github.com/<owner>/<repo>/releases/download/<tag>/spm.json),
//     cached per (owner, repo, tag) because published manifests are immutable
//   - raw asset download via [Client.Download]
//
// # Usage
//
//	client := github.NewClient(
//	    github.WithToken(os.Getenv("GITHUB_TOKEN")),
//	    github.WithCache(c, 0),
//	)
//
//	tag, err := client.LatestTag(ctx, "asg017", "sqlite-vec")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Authentication
//
// A token is optional. It is only sent to the API host, never to the
// download host, so it cannot leak through release-asset redirects.
//
// # Testing
//
// [WithAPIURL] and [WithDownloadURL] point the client at httptest servers.
package github

package mcpserver

// PostFormatContract describes the vault document conventions the build
// pipeline relies on. LLM consumers should follow it when authoring posts.
const PostFormatContract = `# Dagaz Post Format Contract

Every Markdown document in the vault that should be published as a blog post
MUST follow this structure.

## Filename

` + "```" + `
YYMMDD-slug.md        e.g. 230615-my-first-post.md
` + "```" + `

1. **The six-digit date prefix is required for publication.** It becomes the
   post date (20YY-MM-DD). Documents without it are still converted but do
   not appear in the blog listing.
2. The filename stem (without ` + "`" + `.md` + "`" + `) is the post id and the name of the
   post's asset folder.
3. Posts are listed newest-first by filename, so the date prefix also fixes
   the ordering.

## Content

` + "```" + `markdown
# Post Title

Body text in standard Markdown.

![[photo.jpg]]
` + "```" + `

1. **The first line should be a heading** — it becomes the post title. With
   no heading, the first non-blank, non-image line is used (truncated to 50
   characters). A document without any usable title line is not published.
2. **Images use embed-bracket syntax**: ` + "`" + `![[filename.jpg]]` + "`" + `. The build
   rewrites it to standard syntax pointing at the post's asset folder.
   Standard syntax ` + "`" + `![alt](assets/filename.jpg)` + "`" + ` is also recognized but its
   path is kept as written.
3. **Image files live anywhere under the vault's ` + "`" + `assets/` + "`" + ` folder.** They
   are found by filename, so filenames must be unique to be unambiguous.
4. No YAML frontmatter: the title comes from the content, the date from the
   filename.
5. Encoding is UTF-8.
`

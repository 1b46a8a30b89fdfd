package styles

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconTray     = "\U000F009A" // nf-md-bell
	IconClose    = ""          // nf-fa-close
	IconPin      = "\U000F0403" // nf-md-pin
	IconSelected = "▌"          // left half block
	IconCopied   = ""          // nf-fa-copy
)

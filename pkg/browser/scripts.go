package browser

const openWindowJS = `(url, name) => {
	const w = window.open(url, name);
	if (!w) return false;
	window.__jsonravenWindows = window.__jsonravenWindows || {};
	window.__jsonravenWindows[name] = w;
	return true;
}`

const postMessageJS = `(name, message, origin) => {
	const w = (window.__jsonravenWindows || {})[name];
	if (!w || w.closed) throw new Error("target window is closed");
	w.postMessage(message, origin);
}`

const setItemJS = `(key, value) => {
	window.localStorage.setItem(key, value);
}`

const createFormJS = `(id, method, action, target, field, value) => {
	const form = document.createElement("form");
	form.id = id;
	form.method = method;
	form.action = action;
	form.target = target;
	form.style.display = "none";

	const input = document.createElement("input");
	input.type = "hidden";
	input.name = field;
	input.value = value;

	form.appendChild(input);
	(document.body || document.documentElement).appendChild(form);
}`

const submitFormJS = `(id) => {
	const form = document.getElementById(id);
	if (!form) throw new Error("form " + id + " not found");
	form.submit();
}`

const removeFormJS = `(id) => {
	const form = document.getElementById(id);
	if (form) form.remove();
}`
